package extract

import (
	"testing"

	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

func TestQuantity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		user      string
		agent     string
		want      int
		wantFound bool
	}{
		{"from caller", "i want to buy 3 running shoes", "", 3, true},
		{"caller wins over agent", "please order 2", "I have added 5 items", 2, true},
		{"from agent reply", "sounds good", "Your order for 4 Cotton T-Shirt is noted", 4, true},
		{"implausible rejected", "i want to buy 2999", "", 0, false},
		{"no number", "i would like to buy something", "sure", 0, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, found := Quantity(tc.user, tc.agent)
			if found != tc.wantFound || got != tc.want {
				t.Fatalf("Quantity() = (%d, %v), want (%d, %v)", got, found, tc.want, tc.wantFound)
			}
		})
	}
}

func TestProduct(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		reply     string
		want      string
		wantFound bool
	}{
		{"plain", "One Cotton T-Shirt costs 299 rupees.", "Cotton T-Shirt", true},
		{"brand prefix", "The Nike Running Shoes are in stock.", "Nike Running Shoes", true},
		{"strips order boilerplate", "Ordered 2 Sony Wireless Headphones for you.", "Sony Wireless Headphones", true},
		{"no category keyword", "We have many great offers today.", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, found := Product(tc.reply)
			if found != tc.wantFound || got != tc.want {
				t.Fatalf("Product(%q) = (%q, %v), want (%q, %v)", tc.reply, got, found, tc.want, tc.wantFound)
			}
		})
	}
}

func TestPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		text      string
		want      float64
		wantTotal bool
		wantFound bool
	}{
		{"unit price", "One Cotton T-Shirt costs 299 rupees.", 299, false, true},
		{"price keyword", "It is priced at 1499 rupees right now.", 1499, false, true},
		{"total keyword", "Your total comes to 897 rupees.", 897, true, true},
		{"big amount is total", "That would be for 8997 rupees altogether.", 8997, true, true},
		{"no keyword near amount", "He ran 299 rupees worth of errands yesterday maybe", 0, false, false},
		{"no amount", "That one is out of stock, sorry.", 0, false, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, isTotal, found := Price(tc.text)
			if found != tc.wantFound {
				t.Fatalf("Price(%q) found = %v, want %v", tc.text, found, tc.wantFound)
			}
			if !found {
				return
			}
			if got != tc.want || isTotal != tc.wantTotal {
				t.Fatalf("Price(%q) = (%v, total=%v), want (%v, total=%v)", tc.text, got, isTotal, tc.want, tc.wantTotal)
			}
		})
	}
}

func TestUpdateDerivesUnitPriceFromTotal(t *testing.T) {
	t.Parallel()

	var ec statex.ExtractedContext
	Update(&ec, "i want to buy 3 t shirts", "Your order for 3 Cotton T-Shirt has a total of 897 rupees.")

	if ec.LastQuantity != 3 {
		t.Fatalf("quantity = %d, want 3", ec.LastQuantity)
	}
	if ec.LastProduct != "Cotton T-Shirt" {
		t.Fatalf("product = %q, want Cotton T-Shirt", ec.LastProduct)
	}
	if ec.LastTotal != 897 {
		t.Fatalf("total = %v, want 897", ec.LastTotal)
	}
	if ec.LastUnitPrice != 299 {
		t.Fatalf("unit price = %v, want 299", ec.LastUnitPrice)
	}
}

func TestUpdateKeepsStaleValuesUntilReplaced(t *testing.T) {
	t.Parallel()

	var ec statex.ExtractedContext
	Update(&ec, "", "One Cotton T-Shirt costs 299 rupees.")
	if ec.LastUnitPrice != 299 || ec.LastProduct != "Cotton T-Shirt" {
		t.Fatalf("first turn: got (%q, %v)", ec.LastProduct, ec.LastUnitPrice)
	}

	// A turn with nothing extractable leaves every field alone.
	Update(&ec, "hmm let me think", "Take your time!")
	if ec.LastUnitPrice != 299 || ec.LastProduct != "Cotton T-Shirt" || ec.LastQuantity != 1 {
		t.Fatalf("stale values lost: (%q, %v, %d)", ec.LastProduct, ec.LastUnitPrice, ec.LastQuantity)
	}

	// A newer product match replaces only the product.
	Update(&ec, "", "The Nike Running Shoes are very popular.")
	if ec.LastProduct != "Nike Running Shoes" {
		t.Fatalf("product = %q, want Nike Running Shoes", ec.LastProduct)
	}
	if ec.LastUnitPrice != 299 {
		t.Fatalf("unit price must persist, got %v", ec.LastUnitPrice)
	}
}

func TestUpdateDefaultsQuantityToOne(t *testing.T) {
	t.Parallel()

	var ec statex.ExtractedContext
	Update(&ec, "tell me about the t shirt", "One Cotton T-Shirt costs 299 rupees.")
	if ec.LastQuantity != 1 {
		t.Fatalf("quantity = %d, want default 1", ec.LastQuantity)
	}
}
