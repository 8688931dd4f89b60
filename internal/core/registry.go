package core

// FieldKind is the value type of a registered field.
type FieldKind string

const (
	KindDate   FieldKind = "date"
	KindNumber FieldKind = "number"
	KindText   FieldKind = "text"
	KindSelect FieldKind = "select"
	KindNote   FieldKind = "note"
)

// Known field keys.
const (
	FieldDate     = "date"
	FieldAmount   = "amount"
	FieldCount    = "count"
	FieldTitle    = "title"
	FieldCategory = "category"
	FieldVendor   = "vendor"
	FieldPerson   = "person"
	FieldLocation = "location"
	FieldNote     = "note"
)

// Categories are the choices of the category field.
var Categories = []string{"Food", "Travel", "Shopping", "Bills", "Savings", "Other"}

// FieldDefinition describes how a field key is labelled and typed.
type FieldDefinition struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Prompt   string    `json:"prompt"`
	Kind     FieldKind `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// registry is ordered for display.
var registry = []FieldDefinition{
	{Key: FieldDate, Label: "Date", Prompt: "Date", Kind: KindDate, Required: true},
	{Key: FieldAmount, Label: "Amount", Prompt: "Amount", Kind: KindNumber},
	{Key: FieldCount, Label: "Count", Prompt: "Count", Kind: KindNumber},
	{Key: FieldTitle, Label: "Title", Prompt: "Title/Name", Kind: KindText},
	{Key: FieldCategory, Label: "Category", Prompt: "Category", Kind: KindSelect, Options: Categories},
	{Key: FieldVendor, Label: "Vendor", Prompt: "Vendor/Shop", Kind: KindText},
	{Key: FieldPerson, Label: "Person", Prompt: "Person Name", Kind: KindText},
	{Key: FieldLocation, Label: "Location", Prompt: "Location", Kind: KindText},
	{Key: FieldNote, Label: "Note", Prompt: "Note", Kind: KindNote},
}

var registryByKey = func() map[string]FieldDefinition {
	m := make(map[string]FieldDefinition, len(registry))
	for _, def := range registry {
		m[def.Key] = def
	}
	return m
}()

// Describe returns the definition of key. Unknown keys get a text definition
// labelled with the key itself.
func Describe(key string) FieldDefinition {
	if def, ok := registryByKey[key]; ok {
		def.Options = append([]string(nil), def.Options...)
		return def
	}
	return FieldDefinition{Key: key, Label: key, Prompt: key, Kind: KindText}
}

// Fields returns the whole catalog in display order.
func Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(registry))
	for i, def := range registry {
		out[i] = Describe(def.Key)
	}
	return out
}

// IsNumeric reports whether key is a registered number field.
func IsNumeric(key string) bool {
	return Describe(key).Kind == KindNumber
}

// Labels maps keys to their short report labels.
func Labels(keys []string) []string {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = Describe(k).Label
	}
	return labels
}
