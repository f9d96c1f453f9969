package inventory

import "strings"

// Entity is the uniform capability set every kind implements. The diff and decision
// algorithms are written once against this interface.
type Entity interface {
	Kind() Kind
	Key() Key
	Attributes() Attrs
	Relations() []Ref
}

// Ref is a reference from one entity to another by natural key.
type Ref struct {
	Field string `json:"field"`
	Kind  Kind   `json:"kind"`
	Key   Key    `json:"key"`
}

func refsOf(refs ...Ref) []Ref {
	out := refs[:0]
	for _, r := range refs {
		if !r.Key.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// Location is a site, building or other physical place.
type Location struct {
	Name         string
	LocationType string
	Status       string
	Description  string
	Latitude     *float64
	Longitude    *float64
}

func (l *Location) Kind() Kind { return KindLocation }
func (l *Location) Key() Key   { return NewKey(l.Name) }

func (l *Location) Attributes() Attrs {
	a := Attrs{}
	a.setString(FieldLocationType, l.LocationType)
	a.setString(FieldStatus, l.Status)
	a.setString(FieldDescription, l.Description)
	a.setFloat(FieldLatitude, l.Latitude)
	a.setFloat(FieldLongitude, l.Longitude)
	return a
}

func (l *Location) Relations() []Ref { return nil }

// Device is a network element installed at a location.
type Device struct {
	Name         string
	DeviceType   string
	Manufacturer string
	Role         string
	Status       string
	Location     string
	Serial       string
	Platform     string
	Comments     string
}

func (d *Device) Kind() Kind { return KindDevice }
func (d *Device) Key() Key   { return NewKey(d.Name) }

func (d *Device) Attributes() Attrs {
	a := Attrs{}
	a.setString(FieldDeviceType, d.DeviceType)
	a.setString(FieldManufacturer, d.Manufacturer)
	a.setString(FieldRole, d.Role)
	a.setString(FieldStatus, d.Status)
	a.setString(FieldLocation, d.Location)
	a.setString(FieldSerial, d.Serial)
	a.setString(FieldPlatform, d.Platform)
	a.setString(FieldComments, d.Comments)
	return a
}

func (d *Device) Relations() []Ref {
	return refsOf(Ref{Field: FieldLocation, Kind: KindLocation, Key: NewKey(d.Location)})
}

// Interface is a port on a device. It is identified by the device name and its own name.
type Interface struct {
	Device      string
	Name        string
	Type        string
	Status      string
	Enabled     bool
	Description string
	MACAddress  string
	MTU         *int64
}

func (i *Interface) Kind() Kind { return KindInterface }
func (i *Interface) Key() Key   { return ScopedKey(i.Device, i.Name) }

func (i *Interface) Attributes() Attrs {
	a := Attrs{}
	a.setString(FieldType, i.Type)
	a.setString(FieldStatus, i.Status)
	a.setBool(FieldEnabled, i.Enabled)
	a.setString(FieldDescription, i.Description)
	a.setString(FieldMACAddress, strings.ToLower(i.MACAddress))
	a.setInt(FieldMTU, i.MTU)
	return a
}

func (i *Interface) Relations() []Ref {
	return refsOf(Ref{Field: FieldDevice, Kind: KindDevice, Key: NewKey(i.Device)})
}

// Prefix is an IP network in CIDR notation, unique within a namespace.
type Prefix struct {
	Prefix      string
	Namespace   string
	Status      string
	Description string
	VRF         string
	Location    string
}

func (p *Prefix) Kind() Kind { return KindPrefix }
func (p *Prefix) Key() Key   { return ScopedKey(namespaceOrDefault(p.Namespace), p.Prefix) }

func (p *Prefix) Attributes() Attrs {
	a := Attrs{}
	a.setString(FieldStatus, p.Status)
	a.setString(FieldDescription, p.Description)
	a.setString(FieldVRF, p.VRF)
	a.setString(FieldLocation, p.Location)
	return a
}

func (p *Prefix) Relations() []Ref {
	return refsOf(Ref{Field: FieldLocation, Kind: KindLocation, Key: NewKey(p.Location)})
}

// IPAddress is a single host address, optionally with its prefix length, unique within a namespace.
type IPAddress struct {
	Address     string
	Namespace   string
	Status      string
	DNSName     string
	Description string
}

func (ip *IPAddress) Kind() Kind { return KindIPAddress }
func (ip *IPAddress) Key() Key   { return ScopedKey(namespaceOrDefault(ip.Namespace), ip.Address) }

func (ip *IPAddress) Attributes() Attrs {
	a := Attrs{}
	a.setString(FieldStatus, ip.Status)
	a.setString(FieldDNSName, ip.DNSName)
	a.setString(FieldDescription, ip.Description)
	return a
}

func (ip *IPAddress) Relations() []Ref { return nil }

// Circuit is a provider circuit identified by provider and circuit ID.
type Circuit struct {
	CID         string
	Provider    string
	CircuitType string
	Status      string
	Description string
	CommitRate  *int64
	Comments    string
}

func (c *Circuit) Kind() Kind { return KindCircuit }
func (c *Circuit) Key() Key   { return ScopedKey(c.Provider, c.CID) }

func (c *Circuit) Attributes() Attrs {
	a := Attrs{}
	a.setString(FieldCircuitType, c.CircuitType)
	a.setString(FieldStatus, c.Status)
	a.setString(FieldDescription, c.Description)
	a.setInt(FieldCommitRate, c.CommitRate)
	a.setString(FieldComments, c.Comments)
	return a
}

func (c *Circuit) Relations() []Ref { return nil }

func namespaceOrDefault(ns string) string {
	if ns = strings.TrimSpace(ns); ns != "" {
		return ns
	}
	return DefaultNamespace
}
