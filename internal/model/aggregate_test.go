package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *ResultTable {
	table := NewResultTable(6)
	table.Append(ResultRow{Model: "slow", Language: "Python", Duration: 4 * time.Second})
	table.Append(ResultRow{Model: "fast", Language: "Python", Duration: 1 * time.Second})
	table.Append(ResultRow{Model: "broken", Language: "Python", Failed: true, Output: "boom"})
	table.Append(ResultRow{Model: "slow", Language: "Java", Duration: 6 * time.Second})
	table.Append(ResultRow{Model: "fast", Language: "Java", Duration: 3 * time.Second})
	table.Append(ResultRow{Model: "broken", Language: "Java", Duration: 2 * time.Second})
	return table
}

func TestMeanByModelSortedAscending(t *testing.T) {
	means := MeanByModel(sampleTable())

	require.Len(t, means, 3)
	assert.Equal(t, "broken", means[0].Model)
	assert.Equal(t, time.Second, means[0].Mean, "failed rows count as zero")
	assert.Equal(t, "fast", means[1].Model)
	assert.Equal(t, 2*time.Second, means[1].Mean)
	assert.Equal(t, "slow", means[2].Model)
	assert.Equal(t, 5.0, means[2].Seconds)
	assert.Equal(t, 2, means[2].Rows)
}

func TestMeanByModelTiesKeepFirstSeenOrder(t *testing.T) {
	table := NewResultTable(2)
	table.Append(ResultRow{Model: "b", Duration: time.Second})
	table.Append(ResultRow{Model: "a", Duration: time.Second})

	means := MeanByModel(table)
	assert.Equal(t, "b", means[0].Model)
	assert.Equal(t, "a", means[1].Model)
}

func TestProjectionsAreIdempotentAndReadOnly(t *testing.T) {
	table := sampleTable()
	before := table.Rows()

	first := MeanByModel(table)
	second := MeanByModel(table)
	assert.Equal(t, first, second)

	p1 := PivotByLanguage(table)
	p2 := PivotByLanguage(table)
	assert.Equal(t, p1, p2)

	assert.Equal(t, before, table.Rows())
}

func TestPivotByLanguage(t *testing.T) {
	p := PivotByLanguage(sampleTable())

	assert.Equal(t, []string{"broken", "fast", "slow"}, p.Models)
	assert.Equal(t, []string{"Java", "Python"}, p.Languages)

	d, ok := p.Mean("fast", "Java")
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	d, ok = p.Mean("broken", "Python")
	require.True(t, ok)
	assert.Zero(t, d)

	_, ok = p.Mean("fast", "C")
	assert.False(t, ok)
}

func TestProjectionsOfEmptyTable(t *testing.T) {
	empty := NewResultTable(0)
	assert.Empty(t, MeanByModel(empty))

	p := PivotByLanguage(empty)
	assert.Empty(t, p.Models)
	assert.Empty(t, p.Languages)
}
