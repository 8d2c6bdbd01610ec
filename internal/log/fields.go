package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldEntityID   = "entity_id"
	FieldEvent      = "event"
)

// Component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentAuth        = "auth"
	ComponentStorage     = "storage"
	ComponentCategory    = "category"
	ComponentTransaction = "transaction"
	ComponentDashboard   = "dashboard"
	ComponentEvents      = "events"
	ComponentCache       = "cache"
	ComponentSeed        = "seed"
)

// Operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSummary  = "summary"
	OpLogin    = "login"
	OpRegister = "register"
	OpRefresh  = "refresh"
	OpLogout   = "logout"
	OpMigrate  = "migrate"
	OpPublish  = "publish"
)
