package export

import (
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/rotisserie/eris"

	"github.com/sells-group/energy-gdp/internal/model"
)

var joinedSchema = arrow.NewSchema([]arrow.Field{
	{Name: "country_name", Type: arrow.BinaryTypes.String},
	{Name: "country_code", Type: arrow.BinaryTypes.String},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32},
	{Name: "gdp", Type: arrow.PrimitiveTypes.Float64},
	{Name: "renewable_pct", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "region", Type: arrow.BinaryTypes.String},
}, nil)

// WriteParquet writes the joined table to a gzip-compressed Parquet file at path.
func WriteParquet(path string, joined []model.JoinedRecord) error {
	rec := joinedRecord(memory.NewGoAllocator(), joined)
	defer rec.Release()

	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "parquet: create %s", path)
	}
	// The writer closes out.

	w, err := pqarrow.NewFileWriter(
		joinedSchema,
		out,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Gzip)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		_ = out.Close()
		return eris.Wrap(err, "parquet: new writer")
	}

	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return eris.Wrapf(err, "parquet: write %s", path)
	}
	return eris.Wrapf(w.Close(), "parquet: close %s", path)
}

func joinedRecord(mem memory.Allocator, joined []model.JoinedRecord) arrow.Record {
	b := array.NewRecordBuilder(mem, joinedSchema)
	defer b.Release()

	for _, r := range joined {
		b.Field(0).(*array.StringBuilder).Append(r.CountryName)
		b.Field(1).(*array.StringBuilder).Append(r.CountryCode)
		b.Field(2).(*array.Int32Builder).Append(int32(r.Year))
		b.Field(3).(*array.Float64Builder).Append(r.GDP)
		pct := b.Field(4).(*array.Float64Builder)
		if r.RenewablePct.Valid {
			pct.Append(r.RenewablePct.Float64)
		} else {
			pct.AppendNull()
		}
		b.Field(5).(*array.StringBuilder).Append(r.Region)
	}
	return b.NewRecord()
}
