package values

// ComponentCategory is the slot category a component is built for.
type ComponentCategory string

const (
	CategoryHead      ComponentCategory = "head"
	CategoryTorso     ComponentCategory = "torso"
	CategoryLimb      ComponentCategory = "limb"
	CategoryAccessory ComponentCategory = "accessory"
)

// AllComponentCategories lists every category in declaration order.
func AllComponentCategories() []ComponentCategory {
	return []ComponentCategory{CategoryHead, CategoryTorso, CategoryLimb, CategoryAccessory}
}

// IsValid reports whether the category is a member of the enumeration.
func (c ComponentCategory) IsValid() bool {
	switch c {
	case CategoryHead, CategoryTorso, CategoryLimb, CategoryAccessory:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (c ComponentCategory) String() string {
	return string(c)
}

// EffectFamily groups modifiers by the gameplay effect they grant.
type EffectFamily string

const (
	FamilyPower    EffectFamily = "power"
	FamilyGuard    EffectFamily = "guard"
	FamilyHaste    EffectFamily = "haste"
	FamilyCritical EffectFamily = "critical"
	FamilyEvasion  EffectFamily = "evasion"
	FamilyVitality EffectFamily = "vitality"
	FamilyFocus    EffectFamily = "focus"
	FamilyFury     EffectFamily = "fury"
)

// AllEffectFamilies lists every effect family in declaration order.
func AllEffectFamilies() []EffectFamily {
	return []EffectFamily{
		FamilyPower, FamilyGuard, FamilyHaste, FamilyCritical,
		FamilyEvasion, FamilyVitality, FamilyFocus, FamilyFury,
	}
}

// IsValid reports whether the family is a member of the enumeration.
func (f EffectFamily) IsValid() bool {
	for _, known := range AllEffectFamilies() {
		if f == known {
			return true
		}
	}
	return false
}

// String returns the string representation
func (f EffectFamily) String() string {
	return string(f)
}

// Condition is a runtime flag that can trigger a modifier's special mode.
type Condition string

const (
	ConditionNone          Condition = ""
	ConditionLowHealth     Condition = "low_health"
	ConditionPrecisionMode Condition = "precision_mode"
)

// IsValid reports whether the condition is known. The empty condition is valid.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNone, ConditionLowHealth, ConditionPrecisionMode:
		return true
	default:
		return false
	}
}
