package query

// AccessMode selects which privacy levels a read may see. It is the single
// canonical projection predicate: the query executor compiles its privacy
// WHERE clause through PrivacyPredicate. The service-layer timecard does not
// use it; it applies its own per-row privacy rule.
type AccessMode string

const (
	// AccessAll sees every row; the single-user default.
	AccessAll AccessMode = "all"
	// AccessInternalAndPublic hides private rows.
	AccessInternalAndPublic AccessMode = "internal_and_public"
	// AccessPublicOnly sees only public rows.
	AccessPublicOnly AccessMode = "public_only"
)

// PrivacyPredicate returns a SQL fragment over the given privacy column and
// its bind arguments. AccessAll returns an empty fragment.
func PrivacyPredicate(mode AccessMode, column string) (string, []any) {
	switch mode {
	case AccessInternalAndPublic:
		return column + " IN (?, ?)", []any{"public", "internal"}
	case AccessPublicOnly:
		return column + " = ?", []any{"public"}
	default:
		return "", nil
	}
}

// privacyAware lists the base entities whose queries accept an access mode.
var privacyAware = map[string]bool{
	"work_session": true,
	"meeting":      true,
	"note":         true,
}
