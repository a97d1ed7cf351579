package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomshop/loomshop-backend/internal/app/model"
)

const (
	colorGroupID = 1
	sizeGroupID  = 2

	redID  = 10
	blueID = 11
	sID    = 20
	mID    = 21
)

func colorSizeGroups() []model.OptionGroup {
	return []model.OptionGroup{
		{
			ID:   colorGroupID,
			Name: "Color",
			Values: []model.OptionValue{
				{ID: redID, GroupID: colorGroupID, Value: "Red", IsActive: true},
				{ID: blueID, GroupID: colorGroupID, Value: "Blue", IsActive: true},
			},
		},
		{
			ID:   sizeGroupID,
			Name: "Size",
			Values: []model.OptionValue{
				{ID: sID, GroupID: sizeGroupID, Value: "S", IsActive: true},
				{ID: mID, GroupID: sizeGroupID, Value: "M", IsActive: true},
			},
		},
	}
}

func colorSizeRelationship() []model.ChainingRelationship {
	return []model.ChainingRelationship{
		{
			ID:            1,
			ParentGroupID: colorGroupID,
			ChildGroupID:  sizeGroupID,
			Constraints: model.ConstraintMap{
				redID:  {sID},
				blueID: {sID, mID},
			},
		},
	}
}

func TestResolveSelectable_NoSelection(t *testing.T) {
	res := ResolveSelectable(colorSizeGroups(), colorSizeRelationship(), true, nil)

	assert.True(t, res.IsSelectable(colorGroupID, redID))
	assert.True(t, res.IsSelectable(colorGroupID, blueID))
	// both sizes reachable through at least one color
	assert.True(t, res.IsSelectable(sizeGroupID, sID))
	assert.True(t, res.IsSelectable(sizeGroupID, mID))
	assert.Empty(t, res.Invalid)
	assert.False(t, res.Complete)
}

func TestResolveSelectable_ParentNarrowsChild(t *testing.T) {
	sel := model.Selection{colorGroupID: redID}
	res := ResolveSelectable(colorSizeGroups(), colorSizeRelationship(), true, sel)

	assert.True(t, res.IsSelectable(sizeGroupID, sID))
	assert.False(t, res.IsSelectable(sizeGroupID, mID))
	assert.Empty(t, res.Invalid)
	assert.False(t, res.Complete)
}

func TestResolveSelectable_IncompatiblePairFlagged(t *testing.T) {
	sel := model.Selection{colorGroupID: redID, sizeGroupID: mID}
	res := ResolveSelectable(colorSizeGroups(), colorSizeRelationship(), true, sel)

	// Red narrows Size to S, so the standing M choice is invalid; Red in
	// turn conflicts with the standing M choice and is not selectable
	assert.True(t, res.Invalid[sizeGroupID])
	assert.True(t, res.Invalid[colorGroupID])
	assert.False(t, res.IsSelectable(colorGroupID, redID))
	assert.True(t, res.IsSelectable(colorGroupID, blueID))
}

func TestResolveSelectable_InactiveValueNeverSelectable(t *testing.T) {
	groups := colorSizeGroups()
	groups[0].Values[1].IsActive = false // Blue off

	res := ResolveSelectable(groups, colorSizeRelationship(), true, nil)

	assert.False(t, res.IsSelectable(colorGroupID, blueID))
	// M was only reachable through Blue
	assert.False(t, res.IsSelectable(sizeGroupID, mID))
	assert.True(t, res.IsSelectable(sizeGroupID, sID))
}

func TestResolveSelectable_DeadEndParentHidden(t *testing.T) {
	groups := colorSizeGroups()
	groups[1].Values[0].IsActive = false // S off

	res := ResolveSelectable(groups, colorSizeRelationship(), true, nil)

	// Red only leads to S, which is gone
	assert.False(t, res.IsSelectable(colorGroupID, redID))
	assert.True(t, res.IsSelectable(colorGroupID, blueID))
}

func TestResolveSelectable_ChainingDisabled(t *testing.T) {
	sel := model.Selection{colorGroupID: redID}
	res := ResolveSelectable(colorSizeGroups(), colorSizeRelationship(), false, sel)

	// constraints are ignored, only IsActive counts
	assert.True(t, res.IsSelectable(sizeGroupID, mID))
	assert.True(t, res.IsSelectable(sizeGroupID, sID))
}

func TestResolveSelectable_MalformedRelationshipIgnored(t *testing.T) {
	rels := colorSizeRelationship()
	rels = append(rels, model.ChainingRelationship{
		ID:            99,
		ParentGroupID: 777, // no such group
		ChildGroupID:  sizeGroupID,
		Constraints:   model.ConstraintMap{1: {sID}},
	})

	res := ResolveSelectable(colorSizeGroups(), rels, true, nil)

	assert.True(t, res.IsSelectable(sizeGroupID, sID))
	assert.True(t, res.IsSelectable(sizeGroupID, mID))
}

func TestResolveSelectable_Complete(t *testing.T) {
	sel := model.Selection{colorGroupID: blueID, sizeGroupID: mID}
	res := ResolveSelectable(colorSizeGroups(), colorSizeRelationship(), true, sel)

	assert.True(t, res.Complete)
	assert.Empty(t, res.Invalid)
}

func TestApplySelection_CascadeClearsChild(t *testing.T) {
	sel := model.Selection{colorGroupID: blueID, sizeGroupID: mID}

	next := ApplySelection(colorSizeGroups(), colorSizeRelationship(), true, sel, colorGroupID, redID)

	assert.Equal(t, redID, int(next[colorGroupID]))
	_, ok := next[sizeGroupID]
	assert.False(t, ok, "incompatible child choice must be cleared")

	// the input selection is untouched
	assert.Equal(t, blueID, int(sel[colorGroupID]))
	assert.Equal(t, mID, int(sel[sizeGroupID]))
}

func TestApplySelection_CompatibleChildKept(t *testing.T) {
	sel := model.Selection{colorGroupID: redID, sizeGroupID: sID}

	next := ApplySelection(colorSizeGroups(), colorSizeRelationship(), true, sel, colorGroupID, blueID)

	assert.Equal(t, blueID, int(next[colorGroupID]))
	assert.Equal(t, sID, int(next[sizeGroupID]))
}

func TestApplySelection_CascadeStopsAtImmediateChild(t *testing.T) {
	groups := []model.OptionGroup{
		{ID: 1, Values: []model.OptionValue{
			{ID: 101, GroupID: 1, IsActive: true},
			{ID: 102, GroupID: 1, IsActive: true},
		}},
		{ID: 2, Values: []model.OptionValue{
			{ID: 201, GroupID: 2, IsActive: true},
			{ID: 202, GroupID: 2, IsActive: true},
		}},
		{ID: 3, Values: []model.OptionValue{
			{ID: 301, GroupID: 3, IsActive: true},
			{ID: 302, GroupID: 3, IsActive: true},
		}},
	}
	rels := []model.ChainingRelationship{
		{ID: 1, ParentGroupID: 1, ChildGroupID: 2, Constraints: model.ConstraintMap{
			101: {201},
			102: {202},
		}},
		{ID: 2, ParentGroupID: 2, ChildGroupID: 3, Constraints: model.ConstraintMap{
			201: {301},
			202: {302},
		}},
	}

	sel := model.Selection{1: 102, 2: 202, 3: 302}
	next := ApplySelection(groups, rels, true, sel, 1, 101)

	_, ok := next[2]
	require.False(t, ok, "direct child must be cleared")
	// the grandchild keeps its value even though its parent is now empty
	assert.Equal(t, uint(302), next[3])
}

func TestApplySelection_UnknownGroupNoop(t *testing.T) {
	sel := model.Selection{colorGroupID: redID}
	next := ApplySelection(colorSizeGroups(), colorSizeRelationship(), true, sel, 555, 1)

	assert.Equal(t, model.Selection{colorGroupID: redID}, next)
}

func TestApplySelection_ChainingDisabledKeepsChild(t *testing.T) {
	sel := model.Selection{colorGroupID: blueID, sizeGroupID: mID}

	next := ApplySelection(colorSizeGroups(), colorSizeRelationship(), false, sel, colorGroupID, redID)

	assert.Equal(t, mID, int(next[sizeGroupID]))
}
