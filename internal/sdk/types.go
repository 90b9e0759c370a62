package sdk

import "context"

// ParameterType names the value domain of a parameter.
type ParameterType string

const (
	TypeFloat      ParameterType = "Float"
	TypeInt        ParameterType = "Int"
	TypeOdd        ParameterType = "Odd"
	TypeEven       ParameterType = "Even"
	TypeBool       ParameterType = "Bool"
	TypeString     ParameterType = "String"
	TypeStringList ParameterType = "StringList"
	TypeColor      ParameterType = "Color"
	TypeFile       ParameterType = "File"
)

// ExportType is either a direct download or an email delivery.
type ExportType string

const (
	ExportDownload ExportType = "download"
	ExportEmail    ExportType = "email"
)

// ParameterDefinition is the static description of a model parameter.
type ParameterDefinition struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DisplayName   string        `json:"displayname,omitempty"`
	Type          ParameterType `json:"type"`
	Min           *float64      `json:"min,omitempty"`
	Max           *float64      `json:"max,omitempty"`
	DecimalPlaces int           `json:"decimalplaces,omitempty"`
	Choices       []string      `json:"choices,omitempty"`
	DefaultValue  string        `json:"defval"`
	Order         *int          `json:"order,omitempty"`
	Hidden        bool          `json:"hidden,omitempty"`
	Group         string        `json:"group,omitempty"`
	Tooltip       string        `json:"tooltip,omitempty"`
}

// Label is the name shown to users.
func (d ParameterDefinition) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// ExportDefinition is the static description of a model export.
type ExportDefinition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DisplayName string     `json:"displayname,omitempty"`
	Type        ExportType `json:"type"`
	Order       *int       `json:"order,omitempty"`
	Hidden      bool       `json:"hidden,omitempty"`
	Group       string     `json:"group,omitempty"`
}

func (d ExportDefinition) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// ExportContent is one artifact produced by an export.
type ExportContent struct {
	Href   string `json:"href"`
	Format string `json:"format"`
	Size   int64  `json:"size,omitempty"`
}

// ExportResponse describes the result of an export request.
type ExportResponse struct {
	ID       string          `json:"id"`
	Filename string          `json:"filename"`
	Msg      string          `json:"msg,omitempty"`
	Content  []ExportContent `json:"content"`
}

// Session is an open connection to one model instance.
type Session interface {
	ID() string
	ModelID() string
	Parameters() map[string]Parameter
	Exports() map[string]Export
	// Customize sends the current parameter values to the backend and waits for
	// the new model state.
	Customize(ctx context.Context) error
	Close(ctx context.Context) error
}

// Parameter is a session-side parameter holding the value sent on Customize.
type Parameter interface {
	Definition() ParameterDefinition
	Value() string
	SetValue(v string)
	IsValid(v string, throwOnError bool) (bool, error)
	ResetToDefaultValue()
	Stringify() string
}

// Export requests an artifact derived from the current parameter values.
type Export interface {
	Definition() ExportDefinition
	// Request runs the export. Parameters missing from overrides use the
	// session's current values.
	Request(ctx context.Context, overrides map[string]string) (ExportResponse, error)
}
