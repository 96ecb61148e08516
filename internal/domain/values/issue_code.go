package values

// IssueCode is the stable, machine-readable identifier of a validation issue.
type IssueCode string

// Basic structure.
const (
	CodeMalformed IssueCode = "STRUCT_MALFORMED"
	CodeMissingID IssueCode = "STRUCT_MISSING_ID"
)

// Required fields.
const (
	CodeNameLength        IssueCode = "FIELD_NAME_LENGTH"
	CodeArchetypeInvalid  IssueCode = "FIELD_ARCHETYPE_INVALID"
	CodeFrameMissing      IssueCode = "FIELD_FRAME_MISSING"
	CodeComponentsMissing IssueCode = "FIELD_COMPONENTS_MISSING"
	CodeComponentsEmpty   IssueCode = "FIELD_COMPONENTS_EMPTY"
	CodeStateMissing      IssueCode = "FIELD_STATE_MISSING"
	CodeRarityInvalid     IssueCode = "FIELD_RARITY_INVALID"
	CodeCapacityInvalid   IssueCode = "FIELD_CAPACITY_INVALID"
	CodeLevelInvalid      IssueCode = "FIELD_LEVEL_INVALID"
	CodeCategoryInvalid   IssueCode = "FIELD_CATEGORY_INVALID"
	CodeFamilyInvalid     IssueCode = "FIELD_FAMILY_INVALID"
)

// Slot allocation.
const (
	CodeCapacityExceeded IssueCode = "SLOT_CAPACITY_EXCEEDED"
	CodeCategoryMissing  IssueCode = "SLOT_CATEGORY_MISSING"
)

// Business rules.
const (
	CodeOwnerRequired     IssueCode = "RULE_OWNER_REQUIRED"
	CodeOwnerForbidden    IssueCode = "RULE_OWNER_FORBIDDEN"
	CodeOwnerExpected     IssueCode = "RULE_OWNER_EXPECTED"
	CodeOwnerDiscouraged  IssueCode = "RULE_OWNER_DISCOURAGED"
	CodeRarityFloor       IssueCode = "RULE_RARITY_FLOOR"
	CodeCombatRoleMissing IssueCode = "RULE_COMBAT_ROLE_MISSING"
	CodeCoreMissing       IssueCode = "RULE_CORE_MISSING"
)

// Performance.
const (
	CodeTooManyModifiers IssueCode = "PERF_TOO_MANY_MODIFIERS"
	CodeRatingExtreme    IssueCode = "PERF_RATING_EXTREME"
)

// Compatibility.
const (
	CodeRarityMismatch   IssueCode = "COMPAT_RARITY_MISMATCH"
	CodeStateMismatch    IssueCode = "COMPAT_STATE_MISMATCH"
	CodeModifierConflict IssueCode = "COMPAT_MODIFIER_CONFLICT"
)

// CodeRuleExecutionFailed marks a rule that panicked or returned an error.
const CodeRuleExecutionFailed IssueCode = "RULE_EXECUTION_FAILED"

// String returns the string representation
func (c IssueCode) String() string {
	return string(c)
}
