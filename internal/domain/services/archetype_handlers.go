package services

import (
	"strings"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// archetypeHandler runs the business rules for one archetype.
type archetypeHandler func(u *entities.Unit, policy entities.ArchetypePolicy) []validation.Issue

// archetypeHandlers is the dispatch table. It must hold exactly one handler
// per archetype in values.AllArchetypes.
func archetypeHandlers() map[values.Archetype]archetypeHandler {
	return map[values.Archetype]archetypeHandler{
		values.ArchetypeAutonomous: autonomousRules,
		values.ArchetypeLeader:     leaderRules,
		values.ArchetypeCombat:     combatRules,
		values.ArchetypeSupport:    supportRules,
	}
}

// autonomousRules: no owner, and no identity-defining core is expected.
func autonomousRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	issues := ownerRules(u, p)
	issues = append(issues, rarityFloorRules(u, p)...)
	return append(issues, combatRoleRules(u, p)...)
}

// leaderRules: elevated rarity floors on frame and core.
func leaderRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	issues := ownerRules(u, p)
	issues = append(issues, rarityFloorRules(u, p)...)
	issues = append(issues, combatRoleRules(u, p)...)
	return append(issues, coreRules(u, p)...)
}

// combatRules: a combat role must be declared.
func combatRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	issues := combatRoleRules(u, p)
	issues = append(issues, ownerRules(u, p)...)
	issues = append(issues, rarityFloorRules(u, p)...)
	return append(issues, coreRules(u, p)...)
}

func supportRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	issues := ownerRules(u, p)
	issues = append(issues, rarityFloorRules(u, p)...)
	issues = append(issues, combatRoleRules(u, p)...)
	return append(issues, coreRules(u, p)...)
}

// ownerRules matches owner presence against the policy. Strict policies
// raise errors; soft expectations raise warnings.
func ownerRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	switch {
	case p.Owner == entities.OwnerRequired && !u.HasOwner():
		return []validation.Issue{
			validation.Error(values.CodeOwnerRequired, "%s units require an owner", u.Archetype).At("owner"),
		}
	case p.Owner == entities.OwnerForbidden && u.HasOwner():
		return []validation.Issue{
			validation.Error(values.CodeOwnerForbidden, "%s units cannot have an owner", u.Archetype).
				At("owner").
				Suggest("remove the owner reference"),
		}
	case p.Owner == entities.OwnerExpected && !u.HasOwner():
		return []validation.Issue{
			validation.Warning(values.CodeOwnerExpected, "%s units usually have an owner", u.Archetype).At("owner"),
		}
	case p.Owner == entities.OwnerDiscouraged && u.HasOwner():
		return []validation.Issue{
			validation.Warning(values.CodeOwnerDiscouraged, "%s units usually have no owner", u.Archetype).At("owner"),
		}
	default:
		return nil
	}
}

// rarityFloorRules enforces minimum tiers. Invalid or absent parts are
// reported by the required-fields stage and skipped here.
func rarityFloorRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	var issues []validation.Issue
	if p.MinFrameRarity != "" && u.Frame != nil && u.Frame.Rarity.IsValid() && !u.Frame.Rarity.AtLeast(p.MinFrameRarity) {
		issues = append(issues,
			validation.Error(values.CodeRarityFloor,
				"%s units need a %s or better frame, got %s", u.Archetype, p.MinFrameRarity, u.Frame.Rarity).
				At("frame.rarity"),
		)
	}
	if p.MinCoreRarity != "" && u.Core != nil && u.Core.Rarity.IsValid() && !u.Core.Rarity.AtLeast(p.MinCoreRarity) {
		issues = append(issues,
			validation.Error(values.CodeRarityFloor,
				"%s units need a %s or better core, got %s", u.Archetype, p.MinCoreRarity, u.Core.Rarity).
				At("core.rarity"),
		)
	}
	return issues
}

func combatRoleRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	if !p.RequiresCombatRole || strings.TrimSpace(u.CombatRole) != "" {
		return nil
	}
	return []validation.Issue{
		validation.Error(values.CodeCombatRoleMissing, "%s units must declare a combat role", u.Archetype).
			At("combat_role"),
	}
}

func coreRules(u *entities.Unit, p entities.ArchetypePolicy) []validation.Issue {
	if !p.ExpectsCore || u.Core != nil {
		return nil
	}
	return []validation.Issue{
		validation.Warning(values.CodeCoreMissing, "%s units are expected to carry a core component", u.Archetype).
			At("core"),
	}
}
