package inventory

import "slices"

// Canonical field names shared by the field-mapping table, attribute sets and reports.
const (
	FieldName         = "name"
	FieldLocationType = "location_type"
	FieldStatus       = "status"
	FieldDescription  = "description"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
	FieldDeviceType   = "device_type"
	FieldManufacturer = "manufacturer"
	FieldRole         = "role"
	FieldLocation     = "location"
	FieldSerial       = "serial"
	FieldPlatform     = "platform"
	FieldComments     = "comments"
	FieldDevice       = "device"
	FieldType         = "type"
	FieldEnabled      = "enabled"
	FieldMACAddress   = "mac_address"
	FieldMTU          = "mtu"
	FieldPrefix       = "prefix"
	FieldNamespace    = "namespace"
	FieldVRF          = "vrf"
	FieldAddress      = "address"
	FieldDNSName      = "dns_name"
	FieldCID          = "cid"
	FieldProvider     = "provider"
	FieldCircuitType  = "circuit_type"
	FieldCommitRate   = "commit_rate"
)

// Defaults applied when a source row leaves a field unset.
const (
	DefaultStatus       = "active"
	DefaultLocationType = "Site"
	DefaultUnknown      = "Unknown"
	DefaultIfaceType    = "other"
	DefaultNamespace    = "Global"
)

// Schema describes the capability set of one kind: which canonical fields form the
// natural key, which are compared, and which reference other kinds.
type Schema struct {
	Kind       Kind
	KeyFields  []string
	Attributes []string
	// Relations maps a key or attribute field to the kind it references by natural key.
	Relations map[string]Kind
}

var schemas = map[Kind]Schema{
	KindLocation: {
		Kind:       KindLocation,
		KeyFields:  []string{FieldName},
		Attributes: []string{FieldLocationType, FieldStatus, FieldDescription, FieldLatitude, FieldLongitude},
	},
	KindDevice: {
		Kind:      KindDevice,
		KeyFields: []string{FieldName},
		Attributes: []string{
			FieldDeviceType, FieldManufacturer, FieldRole, FieldStatus,
			FieldLocation, FieldSerial, FieldPlatform, FieldComments,
		},
		Relations: map[string]Kind{FieldLocation: KindLocation},
	},
	KindInterface: {
		Kind:       KindInterface,
		KeyFields:  []string{FieldDevice, FieldName},
		Attributes: []string{FieldType, FieldStatus, FieldEnabled, FieldDescription, FieldMACAddress, FieldMTU},
		Relations:  map[string]Kind{FieldDevice: KindDevice},
	},
	KindPrefix: {
		Kind:       KindPrefix,
		KeyFields:  []string{FieldNamespace, FieldPrefix},
		Attributes: []string{FieldStatus, FieldDescription, FieldVRF, FieldLocation},
		Relations:  map[string]Kind{FieldLocation: KindLocation},
	},
	KindIPAddress: {
		Kind:       KindIPAddress,
		KeyFields:  []string{FieldNamespace, FieldAddress},
		Attributes: []string{FieldStatus, FieldDNSName, FieldDescription},
	},
	KindCircuit: {
		Kind:       KindCircuit,
		KeyFields:  []string{FieldProvider, FieldCID},
		Attributes: []string{FieldCircuitType, FieldStatus, FieldDescription, FieldCommitRate, FieldComments},
	},
}

// SchemaFor returns the schema of a kind. The zero Schema is returned for unknown kinds.
func SchemaFor(k Kind) Schema {
	return schemas[k]
}

// Fields returns key fields followed by attribute fields.
func (s Schema) Fields() []string {
	return slices.Concat(s.KeyFields, s.Attributes)
}

// HasField reports whether field is a key or attribute field of the kind.
func (s Schema) HasField(field string) bool {
	return slices.Contains(s.KeyFields, field) || slices.Contains(s.Attributes, field)
}
