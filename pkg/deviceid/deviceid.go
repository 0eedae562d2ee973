package deviceid

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dmitrymomot/apptrack/pkg/identity"
	"github.com/dmitrymomot/apptrack/pkg/platform"
)

// IDType tells where a device identifier came from.
type IDType string

const (
	// TypeAdvertising marks an identifier read verbatim from the platform.
	TypeAdvertising IDType = "advertising_id"
	// TypeRandom marks a locally generated UUID used as a fallback.
	TypeRandom IDType = "random_uuid"
)

func (t IDType) String() string { return string(t) }

// Valid reports whether t is a known type.
func (t IDType) Valid() bool {
	return t == TypeAdvertising || t == TypeRandom
}

// PseudoIDLength is the length of generated pseudo identifiers.
const PseudoIDLength = 21

const pseudoAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DeviceIdentity is the full set of install identifiers.
type DeviceIdentity struct {
	DeviceID     string
	DeviceIDType IDType
	VendorID     string
	PseudoID     string
}

// Provisioner derives identifiers and caches them in a Store.
type Provisioner struct {
	store  *identity.Store
	device platform.Device
	random io.Reader
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithRandomSource replaces crypto/rand as the entropy source for UUIDs and
// pseudo identifiers.
func WithRandomSource(r io.Reader) Option {
	return func(p *Provisioner) {
		if r != nil {
			p.random = r
		}
	}
}

// New creates a Provisioner. Both store and device are required.
func New(store *identity.Store, device platform.Device, opts ...Option) *Provisioner {
	if store == nil || device == nil {
		panic("deviceid: store and device are required")
	}
	p := &Provisioner{store: store, device: device, random: rand.Reader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DeviceIdentifier returns the cached device identifier and its type, creating
// them on first use.
func (p *Provisioner) DeviceIdentifier(ctx context.Context) (string, IDType, error) {
	id, hasID, err := p.store.DeviceID(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrLoad, err)
	}
	rawType, hasType, err := p.store.DeviceIDType(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if hasID && hasType {
		return id, IDType(rawType), nil
	}

	advertising, err := p.device.AdvertisingID(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrPlatformLookup, err)
	}

	typ := TypeAdvertising
	id = advertising
	if platform.IsUnavailable(advertising) {
		typ = TypeRandom
		if id, err = p.newUUID(); err != nil {
			return "", "", err
		}
	}

	if err := p.store.SetDeviceID(ctx, id); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := p.store.SetDeviceIDType(ctx, typ.String()); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return id, typ, nil
}

// VendorIdentifier returns the cached vendor identifier, creating it on first use.
func (p *Provisioner) VendorIdentifier(ctx context.Context) (string, error) {
	id, ok, err := p.store.VendorID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if ok {
		return id, nil
	}

	id, ok, err = p.device.VendorID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPlatformLookup, err)
	}
	if !ok || id == "" {
		if id, err = p.newUUID(); err != nil {
			return "", err
		}
	}

	if err := p.store.SetVendorID(ctx, id); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return id, nil
}

// PseudoIdentifier returns the cached pseudo identifier, creating it on first use.
// Uniqueness is probabilistic; there is no collision check.
func (p *Provisioner) PseudoIdentifier(ctx context.Context) (string, error) {
	id, ok, err := p.store.PseudoID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if ok {
		return id, nil
	}

	id, err = GeneratePseudoID(p.random)
	if err != nil {
		return "", err
	}
	if err := p.store.SetPseudoID(ctx, id); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return id, nil
}

// Identity provisions all three identifiers.
func (p *Provisioner) Identity(ctx context.Context) (DeviceIdentity, error) {
	deviceID, typ, err := p.DeviceIdentifier(ctx)
	if err != nil {
		return DeviceIdentity{}, err
	}
	vendorID, err := p.VendorIdentifier(ctx)
	if err != nil {
		return DeviceIdentity{}, err
	}
	pseudoID, err := p.PseudoIdentifier(ctx)
	if err != nil {
		return DeviceIdentity{}, err
	}
	return DeviceIdentity{
		DeviceID:     deviceID,
		DeviceIDType: typ,
		VendorID:     vendorID,
		PseudoID:     pseudoID,
	}, nil
}

func (p *Provisioner) newUUID() (string, error) {
	id, err := uuid.NewRandomFromReader(p.random)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	return id.String(), nil
}

// GeneratePseudoID returns PseudoIDLength characters drawn uniformly from
// [a-z0-9]. Bytes at or above the largest multiple of the alphabet size are
// rejected to avoid modulo bias.
func GeneratePseudoID(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	const n = len(pseudoAlphabet)
	const limit = 256 - 256%n

	out := make([]byte, 0, PseudoIDLength)
	buf := make([]byte, PseudoIDLength*2)
	for len(out) < PseudoIDLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRandomSource, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, pseudoAlphabet[int(b)%n])
			if len(out) == PseudoIDLength {
				break
			}
		}
	}
	return string(out), nil
}
