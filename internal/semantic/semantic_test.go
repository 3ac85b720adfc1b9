package semantic

import (
	"testing"

	"ingest/internal/dataset"
)

// TestAnnotateByKeyword verifies the name-fragment families map to the
// expected categories.
func TestAnnotateByKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		col  dataset.Column
		want Category
	}{
		{"order id", dataset.Column{Name: "order_id", Type: dataset.TypeNumber}, CategoryIdentifier},
		{"product code", dataset.Column{Name: "ProductCode", Type: dataset.TypeString}, CategoryIdentifier},
		{"created date", dataset.Column{Name: "created_date", Type: dataset.TypeString}, CategoryDate},
		{"amount", dataset.Column{Name: "amount", Type: dataset.TypeNumber}, CategoryMeasure},
		{"quantity", dataset.Column{Name: "qty", Type: dataset.TypeNumber}, CategoryMeasure},
		{"status", dataset.Column{Name: "status", Type: dataset.TypeString}, CategoryDimension},
		{"plain number", dataset.Column{Name: "x1", Type: dataset.TypeNumber}, CategoryMeasure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AnnotateColumn(tt.col, nil)
			if got.Category != tt.want {
				t.Fatalf("AnnotateColumn(%q) = %q, want %q", tt.col.Name, got.Category, tt.want)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Fatalf("confidence = %v out of (0,1]", got.Confidence)
			}
		})
	}
}

// TestAnnotateDateTypeDominates verifies a date-typed column is a date
// role regardless of its name.
func TestAnnotateDateTypeDominates(t *testing.T) {
	t.Parallel()

	got := AnnotateColumn(dataset.Column{Name: "amount", Type: dataset.TypeDate}, nil)
	if got.Category != CategoryDate {
		t.Fatalf("category = %q, want date", got.Category)
	}
}

// TestAnnotateUniquenessReinforcement verifies the distinct-value ratio
// overrides weak name evidence for string columns.
func TestAnnotateUniquenessReinforcement(t *testing.T) {
	t.Parallel()

	// All-distinct strings: identifier, even with an unhelpful name.
	var rows []dataset.Row
	for _, v := range []string{"u1", "u2", "u3", "u4", "u5"} {
		rows = append(rows, dataset.Row{"ref": dataset.String(v)})
	}
	got := AnnotateColumn(dataset.Column{Name: "ref", Type: dataset.TypeString}, rows)
	if got.Category != CategoryIdentifier {
		t.Fatalf("all-distinct column = %q, want identifier", got.Category)
	}

	// One distinct value over many rows: dimension.
	rows = rows[:0]
	for i := 0; i < 20; i++ {
		rows = append(rows, dataset.Row{"flag": dataset.String("yes")})
	}
	got = AnnotateColumn(dataset.Column{Name: "flag", Type: dataset.TypeString}, rows)
	if got.Category != CategoryDimension {
		t.Fatalf("low-cardinality column = %q, want dimension", got.Category)
	}
}

// TestAnnotateRatioIgnoresMissing verifies nulls do not dilute the
// uniqueness ratio.
func TestAnnotateRatioIgnoresMissing(t *testing.T) {
	t.Parallel()

	rows := []dataset.Row{
		{"ref": dataset.String("a")},
		{"ref": dataset.String("b")},
		{"ref": dataset.Null()},
		{"ref": dataset.Null()},
	}
	got := AnnotateColumn(dataset.Column{Name: "ref", Type: dataset.TypeString}, rows)
	if got.Category != CategoryIdentifier {
		t.Fatalf("category = %q, want identifier (2 distinct of 2 present)", got.Category)
	}
}

// TestDomains verifies multi-domain detection and the unknown fallback.
func TestDomains(t *testing.T) {
	t.Parallel()

	cols := []dataset.Column{
		{Name: "customer_name"},
		{Name: "invoice_amount"},
		{Name: "salary"},
	}
	got := Domains(cols)
	want := []string{"finance", "hr", "sales"}
	if len(got) != len(want) {
		t.Fatalf("Domains = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Domains = %v, want %v", got, want)
		}
	}

	got = Domains([]dataset.Column{{Name: "a"}, {Name: "b"}})
	if len(got) != 1 || got[0] != DomainUnknown {
		t.Fatalf("Domains = %v, want [unknown]", got)
	}
}
