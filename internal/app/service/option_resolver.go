package service

import (
	"github.com/loomshop/loomshop-backend/internal/app/model"
)

// Resolution reports, for one product configuration state, which option
// values can currently be picked. Invalid holds the ids of groups whose
// existing selection is no longer selectable. Complete is true once every
// group holds a selection; the storefront uses it to auto-close the
// selector.
type Resolution struct {
	Selectable map[uint]map[uint]bool `json:"selectable"`
	Invalid    map[uint]bool          `json:"invalid"`
	Complete   bool                   `json:"complete"`
}

// IsSelectable reports whether optionID of groupID can currently be picked.
func (r Resolution) IsSelectable(groupID, optionID uint) bool {
	set, ok := r.Selectable[groupID]
	return ok && set[optionID]
}

// ResolveSelectable computes the selectable option set for every group
// given the current selection. It never fails: relationships referencing
// missing groups are ignored and dangling option ids simply never match.
func ResolveSelectable(groups []model.OptionGroup, rels []model.ChainingRelationship, chainingEnabled bool, sel model.Selection) Resolution {
	groupByID := make(map[uint]*model.OptionGroup, len(groups))
	for i := range groups {
		groupByID[groups[i].ID] = &groups[i]
	}

	valid := make([]model.ChainingRelationship, 0, len(rels))
	for _, rel := range rels {
		if _, ok := groupByID[rel.ParentGroupID]; !ok {
			continue
		}
		if _, ok := groupByID[rel.ChildGroupID]; !ok {
			continue
		}
		valid = append(valid, rel)
	}

	res := Resolution{
		Selectable: make(map[uint]map[uint]bool, len(groups)),
		Invalid:    make(map[uint]bool),
	}

	for i := range groups {
		group := &groups[i]
		set := make(map[uint]bool)
		for _, value := range group.Values {
			// administratively disabled values lose regardless of chaining
			if !value.IsActive {
				continue
			}
			if chainingEnabled && !optionSelectable(group, value.ID, valid, groupByID, sel) {
				continue
			}
			set[value.ID] = true
		}
		res.Selectable[group.ID] = set

		if chosen, ok := sel[group.ID]; ok && !set[chosen] {
			res.Invalid[group.ID] = true
		}
	}

	complete := true
	for i := range groups {
		if _, ok := sel[groups[i].ID]; !ok {
			complete = false
			break
		}
	}
	res.Complete = complete

	return res
}

// optionSelectable applies every chaining relationship the group takes part
// in; selectability is the AND of all of them.
func optionSelectable(group *model.OptionGroup, optionID uint, rels []model.ChainingRelationship, groupByID map[uint]*model.OptionGroup, sel model.Selection) bool {
	for _, rel := range rels {
		if rel.ParentGroupID == group.ID {
			allowed := rel.Constraints[optionID]

			// a parent option leading to zero pickable child values is a
			// dead end and must not be offered
			if !hasActiveAllowed(groupByID[rel.ChildGroupID], allowed) {
				return false
			}

			// picking this parent must not leave an incompatible child
			// selection standing
			if chosen, ok := sel[rel.ChildGroupID]; ok && !containsID(allowed, chosen) {
				return false
			}
		}

		if rel.ChildGroupID == group.ID {
			if parentChoice, ok := sel[rel.ParentGroupID]; ok {
				// parent decided: only its allowed set survives
				if !containsID(rel.Constraints[parentChoice], optionID) {
					return false
				}
			} else if !anyActiveParentAllows(groupByID[rel.ParentGroupID], rel.Constraints, optionID) {
				// parent undecided: the value must be reachable through at
				// least one active parent option
				return false
			}
		}
	}
	return true
}

func hasActiveAllowed(child *model.OptionGroup, allowed []uint) bool {
	for _, value := range child.Values {
		if value.IsActive && containsID(allowed, value.ID) {
			return true
		}
	}
	return false
}

func anyActiveParentAllows(parent *model.OptionGroup, constraints model.ConstraintMap, optionID uint) bool {
	for _, value := range parent.Values {
		if value.IsActive && containsID(constraints[value.ID], optionID) {
			return true
		}
	}
	return false
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// ApplySelection returns a new selection with groupID set to optionID.
// When the changed group is a parent and the child group's current choice
// is not allowed under the new parent value, the child entry is removed.
// The cascade stops at the immediate child; grandchildren are not
// re-checked.
func ApplySelection(groups []model.OptionGroup, rels []model.ChainingRelationship, chainingEnabled bool, sel model.Selection, groupID, optionID uint) model.Selection {
	next := sel.Clone()

	groupByID := make(map[uint]*model.OptionGroup, len(groups))
	for i := range groups {
		groupByID[groups[i].ID] = &groups[i]
	}
	if _, ok := groupByID[groupID]; !ok {
		return next
	}

	next[groupID] = optionID

	if !chainingEnabled {
		return next
	}

	for _, rel := range rels {
		if rel.ParentGroupID != groupID {
			continue
		}
		if _, ok := groupByID[rel.ChildGroupID]; !ok {
			continue
		}
		chosen, ok := next[rel.ChildGroupID]
		if !ok {
			continue
		}
		if !containsID(rel.Constraints[optionID], chosen) {
			delete(next, rel.ChildGroupID)
		}
	}

	return next
}
