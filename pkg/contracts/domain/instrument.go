package domain

// CodeWidth is the fixed width of a canonical instrument code.
const CodeWidth = 4

// Canonical field keys for the instrument listing.
const (
	FieldCode     = "Code"
	FieldName     = "Name"
	FieldMarket   = "Market"
	FieldSector33 = "Sector33"
	FieldSector17 = "Sector17"
	FieldScale    = "Scale"
)

// InstrumentFields lists the canonical listing fields in artifact column order.
var InstrumentFields = []string{
	FieldCode,
	FieldName,
	FieldMarket,
	FieldSector33,
	FieldSector17,
	FieldScale,
}

// InstrumentRecord is one entry of the instrument universe.
type InstrumentRecord struct {
	Code     string `json:"code" validate:"required,len=4,numeric"`
	Name     string `json:"name,omitempty"`
	Market   string `json:"market,omitempty"`
	Sector33 string `json:"sector33,omitempty"`
	Sector17 string `json:"sector17,omitempty"`
	Scale    string `json:"scale,omitempty"`
}

// Field returns the value of a canonical field, or "" for unknown keys.
func (r InstrumentRecord) Field(key string) string {
	switch key {
	case FieldCode:
		return r.Code
	case FieldName:
		return r.Name
	case FieldMarket:
		return r.Market
	case FieldSector33:
		return r.Sector33
	case FieldSector17:
		return r.Sector17
	case FieldScale:
		return r.Scale
	}
	return ""
}

// SetField assigns a canonical field by key. Unknown keys are ignored.
func (r *InstrumentRecord) SetField(key, value string) {
	switch key {
	case FieldCode:
		r.Code = value
	case FieldName:
		r.Name = value
	case FieldMarket:
		r.Market = value
	case FieldSector33:
		r.Sector33 = value
	case FieldSector17:
		r.Sector17 = value
	case FieldScale:
		r.Scale = value
	}
}
