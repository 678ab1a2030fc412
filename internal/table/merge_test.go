package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorisk/domain/core"
	"autorisk/domain/table"
)

const modelInfo = `modelo,ano,fabricante
CIVIC,2020,HONDA
COROLLA,2021,TOYOTA
KA,2019,FORD
,2020,GENERICO
`

func mergeCombiner(t *testing.T) *Combiner {
	t.Helper()
	loader := newMemLoader()
	loader.bodies["models.csv"] = modelInfo
	reg := policyRegistry(t, loader)
	require.NoError(t, reg.Register(table.Declaration{Name: "modelos", Locator: "models.csv"}))
	return NewCombiner(reg, nil)
}

func TestMergeJoinTypes(t *testing.T) {
	tests := []struct {
		how    JoinType
		rows   int
		models []string
	}{
		{"", 4, []string{"CIVIC", "CIVIC", "CIVIC", "COROLLA"}},
		{InnerJoin, 4, []string{"CIVIC", "CIVIC", "CIVIC", "COROLLA"}},
		{LeftJoin, 6, []string{"CIVIC", "CIVIC", "CIVIC", "COROLLA", "GOL", "HB20"}},
		{RightJoin, 6, []string{"CIVIC", "CIVIC", "CIVIC", "COROLLA", "KA", ""}},
		{OuterJoin, 8, []string{"CIVIC", "CIVIC", "CIVIC", "COROLLA", "GOL", "HB20", "KA", ""}},
	}
	c := mergeCombiner(t)
	for _, tt := range tests {
		t.Run(string(tt.how), func(t *testing.T) {
			merged, err := c.Merge(context.Background(), PolicyH1, "modelos", "modelo", tt.how)
			require.NoError(t, err)
			require.Equal(t, tt.rows, merged.Len())

			var models []string
			for _, r := range merged.Rows {
				models = append(models, r["modelo"])
			}
			assert.Equal(t, tt.models, models)
		})
	}
}

func TestMergeSuffixesSharedColumns(t *testing.T) {
	c := mergeCombiner(t)

	merged, err := c.Merge(context.Background(), PolicyH1, "modelos", "modelo", LeftJoin)
	require.NoError(t, err)

	assert.Equal(t, "modelo", merged.Columns[0])
	assert.Equal(t, "ano_x", merged.Columns[1])
	assert.Equal(t, []string{"ano_y", "fabricante"}, merged.Columns[len(merged.Columns)-2:])
	assert.False(t, merged.HasColumn("ano"))
	assert.Equal(t, []string{"modelo"}, merged.KeyColumns)

	civic := merged.Rows[2]
	assert.Equal(t, "2019", civic["ano_x"])
	assert.Equal(t, "2020", civic["ano_y"])
	assert.Equal(t, "HONDA", civic["fabricante"])

	gol := merged.Rows[4]
	assert.Equal(t, "GOL", gol["modelo"])
	_, ok := gol.Value("fabricante")
	assert.False(t, ok, "unmatched left row has null right columns")
}

func TestMergeNullKeysNeverMatch(t *testing.T) {
	c := mergeCombiner(t)

	merged, err := c.Merge(context.Background(), "modelos", "modelos", "modelo", InnerJoin)
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Len())
	for _, r := range merged.Rows {
		assert.NotEqual(t, "GENERICO", r["fabricante_x"])
	}
}

func TestMergeAcceptsCombinedView(t *testing.T) {
	c := mergeCombiner(t)

	merged, err := c.Merge(context.Background(), PolicyView, "modelos", "modelo", InnerJoin)
	require.NoError(t, err)
	assert.True(t, merged.HasColumn(PeriodColumn))
	assert.Equal(t, PolicyView+"+modelos", merged.Name)
	for _, r := range merged.Rows {
		assert.Contains(t, []string{"HONDA", "TOYOTA"}, r["fabricante"])
	}
}

func TestMergeRejectsBadArguments(t *testing.T) {
	c := mergeCombiner(t)
	ctx := context.Background()

	_, err := c.Merge(ctx, PolicyH1, "modelos", "modelo", "cross")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)

	_, err = c.Merge(ctx, PolicyH1, "modelos", "fabricante", InnerJoin)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)

	_, err = c.Merge(ctx, PolicyH1, "casco3", "modelo", InnerJoin)
	require.Error(t, err)
	assert.True(t, core.IsNotRegistered(err))
}
