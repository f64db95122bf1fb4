package model

import (
	"sort"
	"time"
)

// ModelMean is the mean duration of one model across a table.
type ModelMean struct {
	Model   string        `json:"model"`
	Mean    time.Duration `json:"mean"`
	Seconds float64       `json:"seconds"`
	Rows    int           `json:"rows"`
}

// MeanByModel groups rows by model and averages their durations, sorted
// ascending by mean. Failed rows count with their zero duration. Ties keep
// first-seen order.
func MeanByModel(table *ResultTable) []ModelMean {
	order := []string{}
	sums := map[string]time.Duration{}
	counts := map[string]int{}

	for _, row := range table.Rows() {
		if _, ok := counts[row.Model]; !ok {
			order = append(order, row.Model)
		}
		sums[row.Model] += row.Duration
		counts[row.Model]++
	}

	means := make([]ModelMean, 0, len(order))
	for _, m := range order {
		mean := sums[m] / time.Duration(counts[m])
		means = append(means, ModelMean{
			Model:   m,
			Mean:    mean,
			Seconds: RoundSeconds(mean),
			Rows:    counts[m],
		})
	}

	sort.SliceStable(means, func(i, j int) bool { return means[i].Mean < means[j].Mean })
	return means
}

// Pivot is a mean-duration table with models as rows and languages as columns.
type Pivot struct {
	Models    []string
	Languages []string
	cells     map[pivotKey]time.Duration
}

type pivotKey struct{ model, lang string }

// Mean returns the mean for (model, language); ok is false when no row exists.
func (p Pivot) Mean(modelName, lang string) (time.Duration, bool) {
	d, ok := p.cells[pivotKey{modelName, lang}]
	return d, ok
}

// PivotByLanguage averages durations per (model, language). Models and
// languages are sorted alphabetically.
func PivotByLanguage(table *ResultTable) Pivot {
	sums := map[pivotKey]time.Duration{}
	counts := map[pivotKey]int{}
	models := map[string]struct{}{}
	langs := map[string]struct{}{}

	for _, row := range table.Rows() {
		k := pivotKey{row.Model, row.Language}
		sums[k] += row.Duration
		counts[k]++
		models[row.Model] = struct{}{}
		langs[row.Language] = struct{}{}
	}

	p := Pivot{
		Models:    sortedKeys(models),
		Languages: sortedKeys(langs),
		cells:     make(map[pivotKey]time.Duration, len(sums)),
	}
	for k, sum := range sums {
		p.cells[k] = sum / time.Duration(counts[k])
	}
	return p
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
