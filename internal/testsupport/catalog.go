package testsupport

import "github.com/wouterstultiens/boardgame-finder/internal/catalog"

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// CatalogEntries returns a small catalog with real BoardGameGeek ids, in a
// fixed order.
func CatalogEntries() []catalog.Entry {
	return []catalog.Entry{
		{ID: 13, Name: "Catan", YearPublished: intPtr(1995), ComplexityWeight: floatPtr(2.29), AverageRating: floatPtr(7.1)},
		{ID: 822, Name: "Carcassonne", YearPublished: intPtr(2000), ComplexityWeight: floatPtr(1.9), AverageRating: floatPtr(7.4)},
		{ID: 1406, Name: "Monopoly", YearPublished: intPtr(1935), ComplexityWeight: floatPtr(1.63), AverageRating: floatPtr(4.4)},
		{ID: 9209, Name: "Ticket to Ride", YearPublished: intPtr(2004), ComplexityWeight: floatPtr(1.83), AverageRating: floatPtr(7.4)},
		{ID: 14996, Name: "Ticket to Ride: Europe", YearPublished: intPtr(2005), ComplexityWeight: floatPtr(1.92), AverageRating: floatPtr(7.5)},
		{ID: 53383, Name: "Ticket to Ride: Europa 1912", YearPublished: intPtr(2009)},
		{ID: 13972, Name: "Party & Co", YearPublished: intPtr(1997), AverageRating: floatPtr(5.9)},
		{ID: 29281, Name: "Party & Co: Original", YearPublished: intPtr(2005)},
		{ID: 31395, Name: "Party & Co: Expansion", YearPublished: intPtr(2000)},
		{ID: 44125, Name: "Party & Co Junior", YearPublished: intPtr(2004)},
		{ID: 153938, Name: "Camel Up", YearPublished: intPtr(2014), ComplexityWeight: floatPtr(1.45), AverageRating: floatPtr(7.1)},
		{ID: 266192, Name: "Wingspan", YearPublished: intPtr(2019), ComplexityWeight: floatPtr(2.45), AverageRating: floatPtr(8.0)},
		{ID: 299571, Name: "Bandida", YearPublished: intPtr(2020), ImagePath: "https://cf.geekdo-images.com/bandida.jpg"},
	}
}
