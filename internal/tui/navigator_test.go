package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigatorPushPop(t *testing.T) {
	n := NewNavigator(ScreenConflictList)
	assert.Equal(t, ScreenConflictList, n.Current())
	assert.True(t, n.AtRoot())

	n.Push(ScreenConflictDetail)
	n.Push(ScreenDiff)
	assert.Equal(t, ScreenDiff, n.Current())
	assert.Equal(t, 3, n.Depth())

	assert.Equal(t, ScreenConflictDetail, n.Pop())
	assert.Equal(t, ScreenConflictList, n.Pop())
	assert.True(t, n.AtRoot())
}

func TestNavigatorPopAtRootIsNoOp(t *testing.T) {
	n := NewNavigator(ScreenConflictList)
	assert.Equal(t, ScreenConflictList, n.Pop())
	assert.Equal(t, 1, n.Depth())
}

func TestNavigatorReset(t *testing.T) {
	n := NewNavigator(ScreenConflictList)
	n.Push(ScreenConflictDetail)
	n.Push(ScreenMergePreview)

	n.Reset(ScreenConflictList)
	assert.True(t, n.AtRoot())
	assert.Equal(t, ScreenConflictList, n.Current())
}

func TestScreenString(t *testing.T) {
	assert.Equal(t, "conflicts", ScreenConflictList.String())
	assert.Equal(t, "merge", ScreenMergePreview.String())
	assert.Equal(t, "unknown", Screen(99).String())
}
