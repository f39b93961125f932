// Package extract mines structured order fields out of free-form call text.
// The dialogue agent emits prose, not data, so the orchestrator keeps the
// freshest {product, unit price, quantity, total} it can pattern-match from
// either side of the conversation. Values persist until replaced by a newer
// match; nothing here invalidates on topic change.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
)

const (
	// quantitySanityBound rejects implausible spoken quantities ("I want to
	// buy 2999" is almost always a misheard price).
	quantitySanityBound = 100
	// totalThreshold: rupee amounts at or above this are treated as order
	// totals rather than unit prices.
	totalThreshold = 5000
)

var (
	userQuantityRe  = regexp.MustCompile(`(?i)\b(?:buy|order|purchase|want)\s+(\d{1,4})\b`)
	agentQuantityRe = regexp.MustCompile(`(?i)\b(?:order for|added|ordered)\s+(\d{1,4})\b`)

	// A capitalized phrase ending in a known product-category keyword, e.g.
	// "Sony Wireless Headphones" or "Cotton T-Shirt".
	productRe = regexp.MustCompile(`((?:[A-Z][A-Za-z0-9'\-]*\s+)*(?:Headphones|Earbuds|Speaker|Shoes|Sneakers|Sandals|T-Shirt|Shirt|Jeans|Jacket|Kurta|Saree|Watch|Phone|Laptop|Tablet|Flour|Rice|Oil|Tea|Coffee|Shampoo|Soap))`)

	boilerplateRe   = regexp.MustCompile(`(?i)^(?:your\s+)?(?:order(?:ed)?\s+(?:for\s+)?|added\s+|purchase\s+of\s+)`)
	leadingDigitsRe = regexp.MustCompile(`^\d+\s*`)

	// "<number> rupees" within reach of a qualifying keyword.
	priceRe = regexp.MustCompile(`(?i)\b(?:for|at|costs?|priced?|price\s+of|total|amount)\b[^0-9]{0,40}(\d+(?:\.\d+)?)\s*rupees`)

	totalWordRe = regexp.MustCompile(`(?i)\btotal\b`)
)

// Update applies the extraction heuristics for one turn: userText is what the
// caller said, agentReply is the final utterance the agent produced. Fields
// of ec are overwritten independently, and only on a match.
func Update(ec *statex.ExtractedContext, userText, agentReply string) {
	if q, ok := Quantity(userText, agentReply); ok {
		ec.LastQuantity = q
	}
	if ec.LastQuantity == 0 {
		ec.LastQuantity = 1
	}

	if p, ok := Product(agentReply); ok {
		ec.LastProduct = p
	}

	value, isTotal, ok := Price(agentReply)
	if !ok {
		value, isTotal, ok = Price(userText)
	}
	if ok {
		if isTotal {
			ec.LastTotal = value
			if ec.LastQuantity > 0 {
				ec.LastUnitPrice = value / float64(ec.LastQuantity)
			}
		} else {
			ec.LastUnitPrice = value
		}
	}
}

// Quantity looks for a spoken quantity, caller speech first, then the agent's
// reply. Values above the sanity bound are discarded.
func Quantity(userText, agentReply string) (int, bool) {
	for _, probe := range []struct {
		re   *regexp.Regexp
		text string
	}{
		{userQuantityRe, userText},
		{agentQuantityRe, agentReply},
	} {
		m := probe.re.FindStringSubmatch(probe.text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n > quantitySanityBound {
			continue
		}
		return n, true
	}
	return 0, false
}

// Product extracts a product name from the agent's reply: the capitalized
// phrase leading up to a category keyword, with order-phrase boilerplate and
// leading digits stripped.
func Product(agentReply string) (string, bool) {
	m := productRe.FindStringSubmatch(agentReply)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	name = boilerplateRe.ReplaceAllString(name, "")
	name = leadingDigitsRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}

// Price finds a rupee amount near a qualifying keyword. isTotal is set when
// the text says "total" or the amount crosses the total threshold; the caller
// then derives the unit price from the known quantity.
func Price(text string) (value float64, isTotal bool, ok bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false, false
	}
	isTotal = v >= totalThreshold || totalWordRe.MatchString(text)
	return v, isTotal, true
}
