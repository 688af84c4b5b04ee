package domain

// StoreState is the persisted document: the full beneficiary and
// payment collections, serialized under a single durable slot.
// SchemaVersion tags the layout for forward compatibility; version 1
// is the layout described here.
type StoreState struct {
	SchemaVersion int           `json:"schema_version"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	Payments      []Payment     `json:"payments"`
}

// CurrentSchemaVersion is written on every save.
const CurrentSchemaVersion = 1
