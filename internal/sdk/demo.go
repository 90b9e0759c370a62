package sdk

func ptr[T any](v T) *T { return &v }

// NewDemoSession returns a small parametric shelf model for offline use.
func NewDemoSession() *MemorySession {
	params := []ParameterDefinition{
		{ID: "p-width", Name: "Width", DisplayName: "Shelf width", Type: TypeFloat, Min: ptr(20.0), Max: ptr(240.0), DecimalPlaces: 1, DefaultValue: "120", Order: ptr(0), Group: "Dimensions"},
		{ID: "p-height", Name: "Height", DisplayName: "Shelf height", Type: TypeFloat, Min: ptr(20.0), Max: ptr(220.0), DecimalPlaces: 1, DefaultValue: "180", Order: ptr(1), Group: "Dimensions"},
		{ID: "p-depth", Name: "Depth", Type: TypeInt, Min: ptr(20.0), Max: ptr(60.0), DefaultValue: "35", Order: ptr(2), Group: "Dimensions"},
		{ID: "p-shelves", Name: "Shelves", DisplayName: "Number of shelves", Type: TypeOdd, Min: ptr(1.0), Max: ptr(11.0), DefaultValue: "5", Order: ptr(3), Group: "Layout"},
		{ID: "p-back", Name: "BackPanel", DisplayName: "Back panel", Type: TypeBool, DefaultValue: "true", Order: ptr(4), Group: "Layout"},
		{ID: "p-material", Name: "Material", Type: TypeStringList, Choices: []string{"Oak", "Walnut", "Birch plywood", "Lacquered MDF"}, DefaultValue: "0", Order: ptr(5), Group: "Finish"},
		{ID: "p-color", Name: "Color", DisplayName: "Lacquer color", Type: TypeColor, DefaultValue: "#f2efe9ff", Group: "Finish"},
		{ID: "p-label", Name: "Engraving", Type: TypeString, Max: ptr(24.0), DefaultValue: "", Group: "Finish", Tooltip: "Text engraved on the top board"},
		{ID: "p-seed", Name: "Seed", Type: TypeInt, DefaultValue: "0", Hidden: true},
	}
	exports := []ExportDefinition{
		{ID: "e-cutlist", Name: "Cutlist", DisplayName: "Cut list", Type: ExportDownload, Order: ptr(1)},
		{ID: "e-model", Name: "Model", DisplayName: "3D model", Type: ExportDownload, Order: ptr(0)},
		{ID: "e-quote", Name: "Quote", DisplayName: "Email quote", Type: ExportEmail},
	}
	return NewMemorySession("demo-session", "demo-shelf", params, exports)
}
