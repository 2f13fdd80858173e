package allegro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchQueryURL(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  string
	}{
		{
			name:  "plain phrase",
			query: SearchQuery{Phrase: "laptop"},
			want:  "https://allegro.pl/listing?string=laptop",
		},
		{
			name:  "page one omitted",
			query: SearchQuery{Phrase: "laptop", Page: 1},
			want:  "https://allegro.pl/listing?string=laptop",
		},
		{
			name:  "later page",
			query: SearchQuery{Phrase: "laptop", Page: 3},
			want:  "https://allegro.pl/listing?p=3&string=laptop",
		},
		{
			name:  "numeric category",
			query: SearchQuery{Phrase: "laptop", Category: "34385"},
			want:  "https://allegro.pl/kategoria/-34385?string=laptop",
		},
		{
			name:  "category slug with trailing id",
			query: SearchQuery{Phrase: "laptop", Category: "laptopy-34385"},
			want:  "https://allegro.pl/kategoria/-34385?string=laptop",
		},
		{
			name:  "category slug",
			query: SearchQuery{Phrase: "laptop", Category: "laptopy"},
			want:  "https://allegro.pl/kategoria/laptopy?string=laptop",
		},
		{
			name:  "seller page",
			query: SearchQuery{Phrase: "mysz", Seller: "Muvepl"},
			want:  "https://allegro.pl/uzytkownik/Muvepl?string=mysz",
		},
		{
			name:  "filters",
			query: SearchQuery{Phrase: "laptop", Sort: "p", PriceMin: "1000", PriceMax: "3000"},
			want:  "https://allegro.pl/listing?order=p&price_from=1000&price_to=3000&string=laptop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.URL())
		})
	}
}
