package models

import (
	"strings"
	"time"

	"inventory-sync/core/inventory"
)

// Location represents the 'inventory_locations' table.
type Location struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;size:100;not null;uniqueIndex"`
	LocationType string    `gorm:"column:location_type;size:100"`
	Status       string    `gorm:"column:status;size:50"`
	Description  string    `gorm:"column:description;size:255"`
	Latitude     *float64  `gorm:"column:latitude"`
	Longitude    *float64  `gorm:"column:longitude"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Location) TableName() string {
	return "inventory_locations"
}

// ToEntity converts the row to its canonical form.
func (l Location) ToEntity() *inventory.Location {
	return &inventory.Location{
		Name:         l.Name,
		LocationType: l.LocationType,
		Status:       l.Status,
		Description:  l.Description,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
	}
}

// NewLocation builds a row from a canonical location.
func NewLocation(e *inventory.Location) Location {
	return Location{
		Name:         e.Name,
		LocationType: e.LocationType,
		Status:       e.Status,
		Description:  e.Description,
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
	}
}

// Device represents the 'inventory_devices' table.
type Device struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;size:100;not null;uniqueIndex"`
	DeviceType   string    `gorm:"column:device_type;size:100"`
	Manufacturer string    `gorm:"column:manufacturer;size:100"`
	Role         string    `gorm:"column:role;size:100"`
	Status       string    `gorm:"column:status;size:50"`
	LocationID   *uint     `gorm:"column:location_id;index"`
	Location     *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`
	Serial       string    `gorm:"column:serial;size:255"`
	Platform     string    `gorm:"column:platform;size:100"`
	Comments     string    `gorm:"column:comments;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Device) TableName() string {
	return "inventory_devices"
}

// ToEntity converts the row to its canonical form. Location must be preloaded.
func (d Device) ToEntity() *inventory.Device {
	e := &inventory.Device{
		Name:         d.Name,
		DeviceType:   d.DeviceType,
		Manufacturer: d.Manufacturer,
		Role:         d.Role,
		Status:       d.Status,
		Serial:       d.Serial,
		Platform:     d.Platform,
		Comments:     d.Comments,
	}
	if d.Location != nil {
		e.Location = d.Location.Name
	}
	return e
}

// NewDevice builds a row from a canonical device. LocationID is resolved by the caller.
func NewDevice(e *inventory.Device) Device {
	return Device{
		Name:         e.Name,
		DeviceType:   e.DeviceType,
		Manufacturer: e.Manufacturer,
		Role:         e.Role,
		Status:       e.Status,
		Serial:       e.Serial,
		Platform:     e.Platform,
		Comments:     e.Comments,
	}
}

// Interface represents the 'inventory_interfaces' table. Names are unique per device.
type Interface struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	DeviceID    uint      `gorm:"column:device_id;not null;uniqueIndex:idx_interface_device_name"`
	Device      *Device   `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"column:name;size:64;not null;uniqueIndex:idx_interface_device_name"`
	Type        string    `gorm:"column:type;size:50"`
	Status      string    `gorm:"column:status;size:50"`
	Enabled     bool      `gorm:"column:enabled"`
	Description string    `gorm:"column:description;size:255"`
	MACAddress  string    `gorm:"column:mac_address;size:18"`
	MTU         *int64    `gorm:"column:mtu"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Interface) TableName() string {
	return "inventory_interfaces"
}

// ToEntity converts the row to its canonical form. Device must be preloaded.
func (i Interface) ToEntity() *inventory.Interface {
	e := &inventory.Interface{
		Name:        i.Name,
		Type:        i.Type,
		Status:      i.Status,
		Enabled:     i.Enabled,
		Description: i.Description,
		MACAddress:  strings.ToLower(strings.TrimSpace(i.MACAddress)),
		MTU:         i.MTU,
	}
	if i.Device != nil {
		e.Device = i.Device.Name
	}
	return e
}

// NewInterface builds a row from a canonical interface. DeviceID is resolved by the caller.
func NewInterface(e *inventory.Interface) Interface {
	return Interface{
		Name:        e.Name,
		Type:        e.Type,
		Status:      e.Status,
		Enabled:     e.Enabled,
		Description: e.Description,
		MACAddress:  e.MACAddress,
		MTU:         e.MTU,
	}
}

// Prefix represents the 'inventory_prefixes' table. Prefixes are unique per namespace.
type Prefix struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Namespace   string    `gorm:"column:namespace;size:100;not null;uniqueIndex:idx_prefix_namespace_prefix"`
	Prefix      string    `gorm:"column:prefix;size:64;not null;uniqueIndex:idx_prefix_namespace_prefix"`
	Status      string    `gorm:"column:status;size:50"`
	Description string    `gorm:"column:description;size:255"`
	VRF         string    `gorm:"column:vrf;size:100"`
	LocationID  *uint     `gorm:"column:location_id;index"`
	Location    *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Prefix) TableName() string {
	return "inventory_prefixes"
}

// ToEntity converts the row to its canonical form. Location must be preloaded.
func (p Prefix) ToEntity() *inventory.Prefix {
	e := &inventory.Prefix{
		Prefix:      canonicalOr(p.Prefix, inventory.CanonicalPrefix),
		Namespace:   p.Namespace,
		Status:      p.Status,
		Description: p.Description,
		VRF:         p.VRF,
	}
	if p.Location != nil {
		e.Location = p.Location.Name
	}
	return e
}

// NewPrefix builds a row from a canonical prefix. LocationID is resolved by the caller.
func NewPrefix(e *inventory.Prefix) Prefix {
	return Prefix{
		Namespace:   e.Key().Scope,
		Prefix:      e.Prefix,
		Status:      e.Status,
		Description: e.Description,
		VRF:         e.VRF,
	}
}

// IPAddress represents the 'inventory_ip_addresses' table. Addresses are unique per namespace.
type IPAddress struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Namespace   string    `gorm:"column:namespace;size:100;not null;uniqueIndex:idx_ip_namespace_address"`
	Address     string    `gorm:"column:address;size:64;not null;uniqueIndex:idx_ip_namespace_address"`
	Status      string    `gorm:"column:status;size:50"`
	DNSName     string    `gorm:"column:dns_name;size:255"`
	Description string    `gorm:"column:description;size:255"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (IPAddress) TableName() string {
	return "inventory_ip_addresses"
}

// ToEntity converts the row to its canonical form.
func (ip IPAddress) ToEntity() *inventory.IPAddress {
	return &inventory.IPAddress{
		Address:     canonicalOr(ip.Address, inventory.CanonicalAddress),
		Namespace:   ip.Namespace,
		Status:      ip.Status,
		DNSName:     ip.DNSName,
		Description: ip.Description,
	}
}

// NewIPAddress builds a row from a canonical IP address.
func NewIPAddress(e *inventory.IPAddress) IPAddress {
	return IPAddress{
		Namespace:   e.Key().Scope,
		Address:     e.Address,
		Status:      e.Status,
		DNSName:     e.DNSName,
		Description: e.Description,
	}
}

// Circuit represents the 'inventory_circuits' table. Circuit IDs are unique per provider.
type Circuit struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Provider    string    `gorm:"column:provider;size:100;not null;uniqueIndex:idx_circuit_provider_cid"`
	CID         string    `gorm:"column:cid;size:100;not null;uniqueIndex:idx_circuit_provider_cid"`
	CircuitType string    `gorm:"column:circuit_type;size:100"`
	Status      string    `gorm:"column:status;size:50"`
	Description string    `gorm:"column:description;size:255"`
	CommitRate  *int64    `gorm:"column:commit_rate"` // Kbps
	Comments    string    `gorm:"column:comments;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Circuit) TableName() string {
	return "inventory_circuits"
}

// ToEntity converts the row to its canonical form.
func (c Circuit) ToEntity() *inventory.Circuit {
	return &inventory.Circuit{
		CID:         c.CID,
		Provider:    c.Provider,
		CircuitType: c.CircuitType,
		Status:      c.Status,
		Description: c.Description,
		CommitRate:  c.CommitRate,
		Comments:    c.Comments,
	}
}

// NewCircuit builds a row from a canonical circuit.
func NewCircuit(e *inventory.Circuit) Circuit {
	return Circuit{
		Provider:    e.Key().Scope,
		CID:         e.CID,
		CircuitType: e.CircuitType,
		Status:      e.Status,
		Description: e.Description,
		CommitRate:  e.CommitRate,
		Comments:    e.Comments,
	}
}

// All returns every model in dependency order, for migrations.
func All() []any {
	return []any{
		&Location{},
		&Device{},
		&Interface{},
		&Prefix{},
		&IPAddress{},
		&Circuit{},
	}
}

// canonicalOr renders a stored prefix or address the way source values are rendered, so
// both sides key the same object identically. Values that do not parse are kept as stored.
func canonicalOr(v string, canon func(string) (string, error)) string {
	if c, err := canon(v); err == nil {
		return c
	}
	return v
}
