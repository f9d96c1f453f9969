package inventory

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"inventory-sync/core/utils"
)

// Fields is one raw row keyed by canonical field name. Values are loosely typed as they
// come out of a SQL driver.
type Fields map[string]any

// FieldError reports a row that cannot be mapped to a canonical entity.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

func (f Fields) str(field string) string {
	return utils.ToString(f[field])
}

func (f Fields) strOr(field, def string) string {
	if v := f.str(field); v != "" {
		return v
	}
	return def
}

func (f Fields) required(field string) (string, error) {
	v := f.str(field)
	if v == "" {
		return "", &FieldError{Field: field, Reason: "required natural-key field is empty"}
	}
	return v, nil
}

// int64Ptr returns nil for a blank value. A value that is present but not an integer is
// a FieldError.
func (f Fields) int64Ptr(field string) (*int64, error) {
	v, err := utils.ToInt64(f[field])
	if errors.Is(err, utils.ErrBlank) {
		return nil, nil
	}
	if err != nil {
		return nil, &FieldError{Field: field, Reason: err.Error()}
	}
	return &v, nil
}

func (f Fields) float64Ptr(field string) (*float64, error) {
	v, err := utils.ToFloat64(f[field])
	if errors.Is(err, utils.ErrBlank) {
		return nil, nil
	}
	if err != nil {
		return nil, &FieldError{Field: field, Reason: err.Error()}
	}
	return &v, nil
}

func (f Fields) boolOr(field string, def bool) (bool, error) {
	v, err := utils.ToBool(f[field])
	if errors.Is(err, utils.ErrBlank) {
		return def, nil
	}
	if err != nil {
		return false, &FieldError{Field: field, Reason: err.Error()}
	}
	return v, nil
}

// Decode maps a raw row into the canonical entity of the given kind. Defaults are applied to
// unset attributes. A missing natural-key field, an unparsable CIDR/IP, and a typed
// attribute that is set but cannot be parsed are errors.
func Decode(kind Kind, f Fields) (Entity, error) {
	switch kind {
	case KindLocation:
		name, err := f.required(FieldName)
		if err != nil {
			return nil, err
		}
		lat, err := f.float64Ptr(FieldLatitude)
		if err != nil {
			return nil, err
		}
		lon, err := f.float64Ptr(FieldLongitude)
		if err != nil {
			return nil, err
		}
		return &Location{
			Name:         name,
			LocationType: f.strOr(FieldLocationType, DefaultLocationType),
			Status:       f.strOr(FieldStatus, DefaultStatus),
			Description:  f.str(FieldDescription),
			Latitude:     lat,
			Longitude:    lon,
		}, nil

	case KindDevice:
		name, err := f.required(FieldName)
		if err != nil {
			return nil, err
		}
		return &Device{
			Name:         name,
			DeviceType:   f.strOr(FieldDeviceType, DefaultUnknown),
			Manufacturer: f.strOr(FieldManufacturer, DefaultUnknown),
			Role:         f.strOr(FieldRole, DefaultUnknown),
			Status:       f.strOr(FieldStatus, DefaultStatus),
			Location:     f.str(FieldLocation),
			Serial:       f.str(FieldSerial),
			Platform:     f.str(FieldPlatform),
			Comments:     f.str(FieldComments),
		}, nil

	case KindInterface:
		device, err := f.required(FieldDevice)
		if err != nil {
			return nil, err
		}
		name, err := f.required(FieldName)
		if err != nil {
			return nil, err
		}
		enabled, err := f.boolOr(FieldEnabled, true)
		if err != nil {
			return nil, err
		}
		mtu, err := f.int64Ptr(FieldMTU)
		if err != nil {
			return nil, err
		}
		return &Interface{
			Device:      device,
			Name:        name,
			Type:        f.strOr(FieldType, DefaultIfaceType),
			Status:      f.strOr(FieldStatus, DefaultStatus),
			Enabled:     enabled,
			Description: f.str(FieldDescription),
			MACAddress:  strings.ToLower(f.str(FieldMACAddress)),
			MTU:         mtu,
		}, nil

	case KindPrefix:
		raw, err := f.required(FieldPrefix)
		if err != nil {
			return nil, err
		}
		cidr, err := CanonicalPrefix(raw)
		if err != nil {
			return nil, &FieldError{Field: FieldPrefix, Reason: err.Error()}
		}
		return &Prefix{
			Prefix:      cidr,
			Namespace:   f.strOr(FieldNamespace, DefaultNamespace),
			Status:      f.strOr(FieldStatus, DefaultStatus),
			Description: f.str(FieldDescription),
			VRF:         f.str(FieldVRF),
			Location:    f.str(FieldLocation),
		}, nil

	case KindIPAddress:
		raw, err := f.required(FieldAddress)
		if err != nil {
			return nil, err
		}
		addr, err := CanonicalAddress(raw)
		if err != nil {
			return nil, &FieldError{Field: FieldAddress, Reason: err.Error()}
		}
		return &IPAddress{
			Address:     addr,
			Namespace:   f.strOr(FieldNamespace, DefaultNamespace),
			Status:      f.strOr(FieldStatus, DefaultStatus),
			DNSName:     f.str(FieldDNSName),
			Description: f.str(FieldDescription),
		}, nil

	case KindCircuit:
		cid, err := f.required(FieldCID)
		if err != nil {
			return nil, err
		}
		rate, err := f.int64Ptr(FieldCommitRate)
		if err != nil {
			return nil, err
		}
		return &Circuit{
			CID:         cid,
			Provider:    f.strOr(FieldProvider, DefaultUnknown),
			CircuitType: f.strOr(FieldCircuitType, DefaultUnknown),
			Status:      f.strOr(FieldStatus, DefaultStatus),
			Description: f.str(FieldDescription),
			CommitRate:  rate,
			Comments:    f.str(FieldComments),
		}, nil
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

// CanonicalPrefix parses a CIDR and renders it in canonical form. Host bits must be zero.
func CanonicalPrefix(s string) (string, error) {
	p, err := netip.ParsePrefix(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	if p.Masked() != p {
		return "", fmt.Errorf("prefix %q has host bits set", s)
	}
	return p.String(), nil
}

// CanonicalAddress parses an IP address with or without a prefix length and renders it in
// canonical form.
func CanonicalAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}
