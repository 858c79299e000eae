// Package render turns normalized items into the HTML card fragment that is
// embedded in a post body.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/mahmoudd2003/list/internal/locale"
	"github.com/mahmoudd2003/list/internal/model"
)

//go:embed cards.html.tmpl
var cardsTemplate string

const defaultName = "مطعم"

var tmpl = template.Must(template.New("cards").Funcs(template.FuncMap{
	"dash": func() string { return locale.Dash },
}).Parse(cardsTemplate))

type card struct {
	Name           string
	Address        string
	Phone          string
	TodayHours     string
	Rating         string
	Services       string
	FamilyFriendly string
	PriceRange     string
	SignatureDish  string
	CrowdNote      string
	MapsURI        string
	Website        string
	FullHours      []string
}

type document struct {
	Date  string
	Cards []card
}

// Render builds the document for items under title, stamped with now's
// calendar date. Equal inputs on the same date give byte-identical HTML.
func Render(items []model.Item, title string, now time.Time) model.Document {
	return model.Document{
		Title:       title,
		HTML:        HTML(items, now),
		GeneratedAt: now,
	}
}

// HTML renders the card fragment. Every text field is escaped by the
// template engine; link fields become anchors only when non-empty.
func HTML(items []model.Item, now time.Time) string {
	doc := document{
		Date:  now.Format("2006-01-02"),
		Cards: make([]card, 0, len(items)),
	}
	for _, it := range items {
		doc.Cards = append(doc.Cards, toCard(it))
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "document", doc); err != nil {
		// unreachable: static template, string-only data, in-memory writer
		panic(fmt.Sprintf("render: execute template: %v", err))
	}
	return buf.String()
}

func toCard(it model.Item) card {
	c := card{
		Name:           orDefault(it.Name, defaultName),
		Address:        orDefault(it.Address, locale.Dash),
		Phone:          strings.TrimSpace(it.Phone),
		TodayHours:     orDefault(it.TodayHours, locale.Dash),
		Services:       strings.Join(it.ServiceOptions, "، "),
		FamilyFriendly: orDefault(it.FamilyFriendly, locale.Dash),
		PriceRange:     orDefault(it.PriceRange, locale.Unspecified),
		SignatureDish:  orDefault(it.SignatureDish, locale.Dash),
		CrowdNote:      orDefault(it.CrowdNote, locale.Dash),
		MapsURI:        strings.TrimSpace(it.MapsURI),
		Website:        strings.TrimSpace(it.Website),
		FullHours:      it.FullHours,
	}
	if it.Rating != nil {
		c.Rating = fmt.Sprintf("%.1f", *it.Rating)
		if it.RatingCount != nil {
			c.Rating += fmt.Sprintf(" (%d مراجعة)", *it.RatingCount)
		}
	}
	return c
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
