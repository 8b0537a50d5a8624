package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashviz/adapters/datareadiness/coercer"
	"dashviz/domain/core"
	domainDataset "dashviz/domain/dataset"
	"dashviz/internal/testkit"
)

func TestLoader_SampleCSV(t *testing.T) {
	table, err := NewDefaultLoader().Load("sample.csv", []byte(testkit.SampleCSV))
	require.NoError(t, err)

	assert.True(t, table.Equal(testkit.SampleTable()))
}

func TestLoader_TypeThreshold(t *testing.T) {
	tests := []struct {
		name    string
		numeric int
		total   int
		want    domainDataset.ColumnType
		missing int
	}{
		{"half numeric stays text", 5, 10, domainDataset.TypeText, 0},
		{"majority numeric is promoted", 6, 10, domainDataset.TypeNumeric, 4},
		{"all numeric", 10, 10, domainDataset.TypeNumeric, 0},
		{"no numeric", 0, 4, domainDataset.TypeText, 0},
	}

	loader := NewDefaultLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := loader.Load("mixed.csv", testkit.MixedColumnCSV(tt.numeric, tt.total))
			require.NoError(t, err)

			col, ok := table.Column("v")
			require.True(t, ok)
			assert.Equal(t, tt.want, col.Type())
			assert.Equal(t, tt.missing, col.MissingCount())
			assert.Equal(t, tt.total, col.Len())
		})
	}
}

func TestLoader_ThresholdIsConfigurable(t *testing.T) {
	config := coercer.DefaultCoercionConfig()
	config.NumericThreshold = 0.4

	table, err := NewLoader(config).Load("mixed.csv", testkit.MixedColumnCSV(5, 10))
	require.NoError(t, err)

	col, _ := table.Column("v")
	assert.Equal(t, domainDataset.TypeNumeric, col.Type())
}

func TestLoader_MissingCellsDoNotCountAgainstPromotion(t *testing.T) {
	data := testkit.CSV(
		[]string{"id", "v"},
		[]string{"a", "1"}, []string{"b", ""}, []string{"c", "NA"}, []string{"d", "2"}, []string{"e", "x"},
	)
	table, err := NewDefaultLoader().Load("gaps.csv", data)
	require.NoError(t, err)
	require.Equal(t, 5, table.Len(), "rows with a filled cell are kept")

	// 2 of 3 present cells are numbers; "x" becomes missing on coercion
	col, _ := table.Column("v")
	assert.Equal(t, domainDataset.TypeNumeric, col.Type())
	assert.Equal(t, 3, col.MissingCount())
}

func TestLoader_TemporalColumns(t *testing.T) {
	data := testkit.CSV(
		[]string{"when", "label"},
		[]string{"2024-01-05", "a"},
		[]string{"2024-02-10", "b"},
		[]string{"not a date", "c"},
	)
	table, err := NewDefaultLoader().Load("dates.csv", data)
	require.NoError(t, err)

	col, _ := table.Column("when")
	assert.Equal(t, domainDataset.TypeTemporal, col.Type())
	assert.Equal(t, "2024-02-10", col.String(1))
	assert.True(t, col.IsMissing(2))

	label, _ := table.Column("label")
	assert.Equal(t, domainDataset.TypeText, label.Type())
}

func TestLoader_NumericWinsOverTemporal(t *testing.T) {
	data := testkit.CSV([]string{"n"}, []string{"1"}, []string{"2"}, []string{"3"})
	table, err := NewDefaultLoader().Load("n.csv", data)
	require.NoError(t, err)

	col, _ := table.Column("n")
	assert.Equal(t, domainDataset.TypeNumeric, col.Type())
}

func TestLoader_DropsEmptyRowsAndColumns(t *testing.T) {
	data := testkit.CSV(
		[]string{"a", "empty", "b"},
		[]string{"1", "", "x"},
		[]string{"", "", ""},
		[]string{"2", " ", "y"},
		[]string{"", "NA", ""},
	)
	table, err := NewDefaultLoader().Load("holes.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, table.ColumnNames())
	assert.Equal(t, 2, table.Len())
}

func TestLoader_HeaderNormalization(t *testing.T) {
	data := testkit.CSV(
		[]string{" x ", "x", "", "x"},
		[]string{"1", "2", "3", "4"},
	)
	table, err := NewDefaultLoader().Load("headers.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "x.1", "Unnamed: 2", "x.2"}, table.ColumnNames())
}

func TestLoader_ShortRowsArePadded(t *testing.T) {
	data := []byte("a,b,c\n1,2\n3,4,5\n")
	table, err := NewDefaultLoader().Load("short.csv", data)
	require.NoError(t, err)

	c, _ := table.Column("c")
	assert.True(t, c.IsMissing(0))
	assert.Equal(t, "5", c.String(1))
}

func TestLoader_Latin1Fallback(t *testing.T) {
	data := []byte("name,city\nJos\xe9,M\xfcnchen\nAnn,Z\xfcrich\n")
	table, err := NewDefaultLoader().Load("people.CSV", data)
	require.NoError(t, err)

	name, _ := table.Column("name")
	city, _ := table.Column("city")
	assert.Equal(t, "José", name.String(0))
	assert.Equal(t, "München", city.String(0))
	assert.Equal(t, "Zürich", city.String(1))
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		data   []byte
		target error
	}{
		{"unsupported extension", "data.json", []byte(`{"a":1}`), core.ErrUnsupportedFormat},
		{"no extension", "data", []byte("a\n1\n"), core.ErrUnsupportedFormat},
		{"too many fields", "bad.csv", []byte("a,b\n1,2,3\n"), core.ErrParse},
		{"empty csv", "empty.csv", []byte(""), core.ErrParse},
		{"corrupt workbook", "bad.xlsx", []byte("not a zip"), core.ErrParse},
		{"legacy xls", "old.xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, core.ErrParse},
	}

	loader := NewDefaultLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := loader.Load(tt.file, tt.data)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.True(t, core.IsLoadError(err))
		})
	}
}

func TestLoader_Workbook(t *testing.T) {
	data, err := testkit.Workbook("Sales", []string{"Region", "Units", "Price"}, [][]interface{}{
		{"North", 3, 2.5},
		{"South", 5, nil},
		{"East", 1, 4.25},
	})
	require.NoError(t, err)

	table, err := NewDefaultLoader().Load("sales.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Units", "Price"}, table.ColumnNames())
	assert.Equal(t, 3, table.Len())

	units, _ := table.Column("Units")
	assert.Equal(t, domainDataset.TypeNumeric, units.Type())
	assert.Equal(t, []float64{3, 5, 1}, units.Numbers())

	price, _ := table.Column("Price")
	assert.Equal(t, domainDataset.TypeNumeric, price.Type())
	assert.True(t, price.IsMissing(1))
}

func TestLoader_GeneratedSales(t *testing.T) {
	config := testkit.DefaultSalesConfig()
	config.OrderCount = 200
	data, err := testkit.NewSalesDataGenerator(config).GenerateCSV()
	require.NoError(t, err)

	table, err := NewDefaultLoader().Load("sales.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 200, table.Len())

	want := map[string]domainDataset.ColumnType{
		"order_date": domainDataset.TypeTemporal,
		"region":     domainDataset.TypeText,
		"product":    domainDataset.TypeText,
		"units":      domainDataset.TypeNumeric,
		"unit_price": domainDataset.TypeNumeric,
		"revenue":    domainDataset.TypeNumeric,
		"returned":   domainDataset.TypeText,
	}
	for name, typ := range want {
		col, ok := table.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, col.Type(), name)
	}
}

func TestLoader_LoadDataset(t *testing.T) {
	loader := NewDefaultLoader()

	t.Run("ready record", func(t *testing.T) {
		table, record, err := loader.LoadDataset("uploads/sample.csv", []byte(testkit.SampleCSV))
		require.NoError(t, err)
		require.NotNil(t, table)

		assert.True(t, record.IsReady())
		assert.Equal(t, "sample", record.GetDisplayName())
		assert.Equal(t, "csv", record.Format)
		assert.Equal(t, "utf-8", record.Encoding)
		assert.Equal(t, 3, record.RecordCount)
		assert.Equal(t, 4, record.FieldCount)
		assert.Zero(t, record.MissingRate)
		assert.Equal(t, int64(len(testkit.SampleCSV)), record.FileSize)
		assert.False(t, record.ID.IsEmpty())
	})

	t.Run("failed record", func(t *testing.T) {
		table, record, err := loader.LoadDataset("notes.txt", []byte("a,b\n1,2\n"))
		require.Error(t, err)
		assert.Nil(t, table)
		require.NotNil(t, record)
		assert.Equal(t, domainDataset.StatusFailed, record.Status)
		assert.Contains(t, record.ErrorMessage, "unsupported file format")
	})
}
