package query

// fieldType classifies a queryable field for operator checking and value
// conversion.
type fieldType int

const (
	typeInt fieldType = iota
	typeString
	typeEnum
	typeBool
	typeDate
	typeDateTime
	typeDecimal // stored as integer tenths
	typeTags    // JSON string array
)

// orderable reports whether gt/gte/lt/lte apply.
func (t fieldType) orderable() bool {
	switch t {
	case typeInt, typeDate, typeDateTime, typeDecimal:
		return true
	}
	return false
}

// textual reports whether contains/starts_with/ends_with apply.
func (t fieldType) textual() bool {
	return t == typeString
}

// fieldSpec maps a schema-level field name to its storage column and type.
type fieldSpec struct {
	column   string
	ftype    fieldType
	nullable bool
}

// edgeKind is the cardinality of a relationship edge.
type edgeKind int

const (
	edgeOne  edgeKind = iota // FK on the source row
	edgeMany                 // FK on the target rows pointing back
)

// edgeSpec is one step of the relationship graph.
type edgeSpec struct {
	target   string   // target entity name
	kind     edgeKind
	fromCol  string // edgeOne: FK column on the source table
	toCol    string // edgeMany: FK column on the target table
	nullable bool   // edgeOne only: whether the FK may be NULL
}

// entitySpec describes one queryable entity: its table, fields, and edges.
type entitySpec struct {
	table   string
	idCol   string // empty for join-row entities without a surrogate key
	privacy string // privacy column, empty when the entity has none
	fields  map[string]fieldSpec
	edges   map[string]edgeSpec
}

// schema is the relationship graph, precomputed once. The query compiler
// traverses it; nothing else defines entity/field/edge names.
var schema = map[string]entitySpec{
	"employer": {
		table: "employers",
		idCol: "id",
		fields: map[string]fieldSpec{
			"id":         {column: "id", ftype: typeInt},
			"name":       {column: "name", ftype: typeString},
			"notes":      {column: "notes", ftype: typeString},
			"tags":       {column: "tags", ftype: typeTags},
			"created_at": {column: "created_at", ftype: typeDateTime},
			"updated_at": {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"projects": {target: "project", kind: edgeMany, toCol: "on_behalf_of_id"},
		},
	},
	"person": {
		table: "persons",
		idCol: "id",
		fields: map[string]fieldSpec{
			"id":             {column: "id", ftype: typeInt},
			"full_name":      {column: "full_name", ftype: typeString},
			"email":          {column: "email", ftype: typeString},
			"phone":          {column: "phone", ftype: typeString},
			"linkedin_url":   {column: "linkedin_url", ftype: typeString},
			"company":        {column: "company", ftype: typeString},
			"title":          {column: "title", ftype: typeString},
			"notes":          {column: "notes", ftype: typeString},
			"is_stakeholder": {column: "is_stakeholder", ftype: typeBool},
			"tags":           {column: "tags", ftype: typeTags},
			"created_at":     {column: "created_at", ftype: typeDateTime},
			"updated_at":     {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"employment_history": {target: "employment_history", kind: edgeMany, toCol: "person_id"},
		},
	},
	"client": {
		table: "clients",
		idCol: "id",
		fields: map[string]fieldSpec{
			"id":         {column: "id", ftype: typeInt},
			"name":       {column: "name", ftype: typeString},
			"type":       {column: "type", ftype: typeEnum},
			"status":     {column: "status", ftype: typeEnum},
			"notes":      {column: "notes", ftype: typeString},
			"tags":       {column: "tags", ftype: typeTags},
			"created_at": {column: "created_at", ftype: typeDateTime},
			"updated_at": {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"contact_person":     {target: "person", kind: edgeOne, fromCol: "contact_person_id", nullable: true},
			"projects":           {target: "project", kind: edgeMany, toCol: "client_id"},
			"employment_history": {target: "employment_history", kind: edgeMany, toCol: "client_id"},
		},
	},
	"project": {
		table: "projects",
		idCol: "id",
		fields: map[string]fieldSpec{
			"id":          {column: "id", ftype: typeInt},
			"name":        {column: "name", ftype: typeString},
			"description": {column: "description", ftype: typeString},
			"status":      {column: "status", ftype: typeEnum},
			"start_date":  {column: "start_date", ftype: typeDate, nullable: true},
			"end_date":    {column: "end_date", ftype: typeDate, nullable: true},
			"tags":        {column: "tags", ftype: typeTags},
			"created_at":  {column: "created_at", ftype: typeDateTime},
			"updated_at":  {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"client":        {target: "client", kind: edgeOne, fromCol: "client_id"},
			"on_behalf_of":  {target: "employer", kind: edgeOne, fromCol: "on_behalf_of_id", nullable: true},
			"work_sessions": {target: "work_session", kind: edgeMany, toCol: "project_id"},
			"meetings":      {target: "meeting", kind: edgeMany, toCol: "project_id"},
		},
	},
	"employment_history": {
		table: "employment_history",
		idCol: "id",
		fields: map[string]fieldSpec{
			"id":         {column: "id", ftype: typeInt},
			"role":       {column: "role", ftype: typeString},
			"start_date": {column: "start_date", ftype: typeDate, nullable: true},
			"end_date":   {column: "end_date", ftype: typeDate, nullable: true},
			"created_at": {column: "created_at", ftype: typeDateTime},
			"updated_at": {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"person": {target: "person", kind: edgeOne, fromCol: "person_id"},
			"client": {target: "client", kind: edgeOne, fromCol: "client_id"},
		},
	},
	"work_session": {
		table:   "work_sessions",
		idCol:   "id",
		privacy: "privacy_level",
		fields: map[string]fieldSpec{
			"id":             {column: "id", ftype: typeInt},
			"date":           {column: "date", ftype: typeDate},
			"start_time":     {column: "start_time", ftype: typeDateTime},
			"end_time":       {column: "end_time", ftype: typeDateTime},
			"duration_hours": {column: "duration_tenths", ftype: typeDecimal},
			"summary":        {column: "summary", ftype: typeString},
			"privacy_level":  {column: "privacy_level", ftype: typeEnum},
			"tags":           {column: "tags", ftype: typeTags},
			"created_at":     {column: "created_at", ftype: typeDateTime},
			"updated_at":     {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"project": {target: "project", kind: edgeOne, fromCol: "project_id"},
		},
	},
	"meeting": {
		table:   "meetings",
		idCol:   "id",
		privacy: "privacy_level",
		fields: map[string]fieldSpec{
			"id":               {column: "id", ftype: typeInt},
			"title":            {column: "title", ftype: typeString},
			"start_time":       {column: "start_time", ftype: typeDateTime},
			"duration_minutes": {column: "duration_minutes", ftype: typeInt},
			"summary":          {column: "summary", ftype: typeString},
			"privacy_level":    {column: "privacy_level", ftype: typeEnum},
			"meeting_type":     {column: "meeting_type", ftype: typeString},
			"location":         {column: "location", ftype: typeString},
			"tags":             {column: "tags", ftype: typeTags},
			"created_at":       {column: "created_at", ftype: typeDateTime},
			"updated_at":       {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{
			"project":   {target: "project", kind: edgeOne, fromCol: "project_id", nullable: true},
			"attendees": {target: "meeting_attendee", kind: edgeMany, toCol: "meeting_id"},
		},
	},
	"meeting_attendee": {
		table: "meeting_attendees",
		fields: map[string]fieldSpec{},
		edges: map[string]edgeSpec{
			"person":  {target: "person", kind: edgeOne, fromCol: "person_id"},
			"meeting": {target: "meeting", kind: edgeOne, fromCol: "meeting_id"},
		},
	},
	"note": {
		table:   "notes",
		idCol:   "id",
		privacy: "privacy_level",
		fields: map[string]fieldSpec{
			"id":            {column: "id", ftype: typeInt},
			"text":          {column: "text", ftype: typeString},
			"privacy_level": {column: "privacy_level", ftype: typeEnum},
			"entity_type":   {column: "entity_type", ftype: typeEnum, nullable: true},
			"entity_id":     {column: "entity_id", ftype: typeInt, nullable: true},
			"tags":          {column: "tags", ftype: typeTags},
			"created_at":    {column: "created_at", ftype: typeDateTime},
			"updated_at":    {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{},
	},
	"reminder": {
		table: "reminders",
		idCol: "id",
		fields: map[string]fieldSpec{
			"id":                  {column: "id", ftype: typeInt},
			"reminder_time":       {column: "reminder_time", ftype: typeDateTime},
			"message":             {column: "message", ftype: typeString},
			"is_completed":        {column: "is_completed", ftype: typeBool},
			"related_entity_type": {column: "related_entity_type", ftype: typeEnum, nullable: true},
			"related_entity_id":   {column: "related_entity_id", ftype: typeInt, nullable: true},
			"snoozed_until":       {column: "snoozed_until", ftype: typeDateTime, nullable: true},
			"dispatched_at":       {column: "dispatched_at", ftype: typeDateTime, nullable: true},
			"tags":                {column: "tags", ftype: typeTags},
			"created_at":          {column: "created_at", ftype: typeDateTime},
			"updated_at":          {column: "updated_at", ftype: typeDateTime},
		},
		edges: map[string]edgeSpec{},
	},
}

// QueryableEntities lists the entity types accepted at the AST root.
// meeting_attendee is an internal traversal hop, not a root.
var QueryableEntities = []string{
	"work_session", "meeting", "person", "client",
	"project", "employer", "note", "reminder",
}

func queryableEntity(name string) bool {
	for _, e := range QueryableEntities {
		if e == name {
			return true
		}
	}
	return false
}
