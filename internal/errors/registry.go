package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route Errors (R001-R099)
	// ============================================

	"R001": {
		Category:   CategoryRoute,
		Message:    "Invalid route pattern",
		Detail:     "Parameter segments need a name (:id) and may carry one trailing modifier: ? optional, + one or more, * zero or more.",
		Suggestion: "Check for a bare ':' segment, a repeated parameter name, or stacked modifiers.",
	},
	"R002": {
		Category:   CategoryRoute,
		Message:    "Route has neither a pattern nor the default flag",
		Detail:     "Only default routes may omit their pattern; every other route must declare one.",
		Suggestion: "Add a pattern such as \"/users/:id\" or mark the route as default.",
	},

	// ============================================
	// Configuration Errors (C001-C099)
	// ============================================

	"C001": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No navrouter.json was found in the given directory.",
		Suggestion: "Create navrouter.json or pass --config with the file location.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "navrouter.json could not be parsed as JSON.",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// Manifest Errors (M001-M099)
	// ============================================

	"M001": {
		Category: CategoryManifest,
		Message:  "Route manifest could not be read",
	},
	"M002": {
		Category:   CategoryManifest,
		Message:    "Route manifest is not valid JSON",
		Suggestion: "The manifest is an object with a \"routes\" array.",
	},
	"M003": {
		Category: CategoryManifest,
		Message:  "View content not found",
		Detail:   "The content store has no object for the view key.",
	},
	"M004": {
		Category:   CategoryManifest,
		Message:    "View template is invalid",
		Suggestion: "View templates use html/template syntax; fields are .Route, .Params, .Query and .URL.",
	},

	// ============================================
	// Protocol Errors (P001-P099)
	// ============================================

	"P001": {
		Category: CategoryProtocol,
		Message:  "Invalid navigation message",
		Detail:   "A thin-client message could not be decoded or named an unknown event type.",
	},
	"P002": {
		Category: CategoryProtocol,
		Message:  "Navigation target rejected",
		Detail:   "Navigation targets must be same-origin relative paths.",
	},

	// ============================================
	// CLI Errors (X001-X099)
	// ============================================

	"X001": {
		Category: CategoryCLI,
		Message:  "Missing required argument",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
