// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// BrandRule maps model-name keywords to a brand subcategory name.
// A keyword ending in a space only matches at the start of a word and must
// be followed by another word ("moto " matches "Moto G84" but not "Motorola").
type BrandRule struct {
	Brand    string
	Keywords []string
}

// DefaultBrandRules is the built-in brand table. Order matters: the first
// rule with a matching keyword wins.
var DefaultBrandRules = []BrandRule{
	{Brand: "Apple", Keywords: []string{"iphone", "ipad", "macbook", "airpods", "imac", "apple"}},
	{Brand: "Samsung", Keywords: []string{"galaxy", "samsung"}},
	{Brand: "Google", Keywords: []string{"pixel", "google"}},
	{Brand: "Xiaomi", Keywords: []string{"xiaomi", "redmi", "poco"}},
	{Brand: "Huawei", Keywords: []string{"huawei"}},
	{Brand: "Honor", Keywords: []string{"honor"}},
	{Brand: "OnePlus", Keywords: []string{"oneplus"}},
	{Brand: "Oppo", Keywords: []string{"oppo"}},
	{Brand: "Vivo", Keywords: []string{"vivo"}},
	{Brand: "Realme", Keywords: []string{"realme"}},
	{Brand: "Nokia", Keywords: []string{"nokia"}},
	{Brand: "Motorola", Keywords: []string{"motorola", "moto "}},
	{Brand: "Sony", Keywords: []string{"xperia", "sony"}},
	{Brand: "Lenovo", Keywords: []string{"thinkpad", "lenovo"}},
	{Brand: "Dell", Keywords: []string{"xps", "dell"}},
	{Brand: "HP", Keywords: []string{"elitebook", "pavilion", "hp "}},
	{Brand: "Asus", Keywords: []string{"zenbook", "asus"}},
	{Brand: "Acer", Keywords: []string{"acer"}},
}

// MatchBrand returns the brand of the first rule with a keyword found in
// model, compared case-insensitively.
func MatchBrand(rules []BrandRule, model string) (string, bool) {
	// A Caser is stateful, so each call gets its own.
	folder := cases.Fold()
	text := folder.String(strings.TrimSpace(model))
	if text == "" {
		return "", false
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if containsKeyword(text, folder.String(kw)) {
				return rule.Brand, true
			}
		}
	}
	return "", false
}

// containsKeyword reports whether kw occurs in text. Keywords ending in a
// space must start a word.
func containsKeyword(text, kw string) bool {
	if !strings.HasSuffix(kw, " ") {
		return strings.Contains(text, kw)
	}
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:pos])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		i = pos + 1
	}
	return false
}
