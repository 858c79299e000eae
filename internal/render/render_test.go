package render

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoudd2003/list/internal/model"
)

var genDate = time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

func fullItem() model.Item {
	rating, count := 4.5, 120
	return model.Item{
		PlaceID:        "ChIJ-a",
		Name:           "Burger & Co",
		Address:        "طريق الملك فهد، الرياض",
		Phone:          "011 000 0000",
		Website:        "https://burger.example/",
		MapsURI:        "https://maps.google.com/?cid=1&x=2",
		PriceRange:     "50 – 75 ر.س",
		TodayHours:     "1:00 م – 2:00 ص",
		FullHours:      []string{"الاثنين: 9:00 ص – 11:00 م", "الثلاثاء: 9:00 ص – 11:00 م"},
		ServiceOptions: []string{"توصيل", "سفري"},
		FamilyFriendly: "نعم (تقديري)",
		CrowdNote:      "8:00 م – 11:00 م (تقديري)",
		Rating:         &rating,
		RatingCount:    &count,
	}
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestHTML_GenerationLine(t *testing.T) {
	out := HTML(nil, genDate)
	doc := parse(t, out)

	assert.Equal(t, "آخر تحديث: 2026-10-18. المصدر: خرائط Google.", strings.TrimSpace(doc.Find("p").First().Text()))
	assert.Equal(t, 1, strings.Count(out, "آخر تحديث"))
	assert.Equal(t, 0, doc.Find("h3").Length())
}

func TestHTML_Cards(t *testing.T) {
	second := fullItem()
	second.Name = "Second"
	doc := parse(t, HTML([]model.Item{fullItem(), second}, genDate))

	names := doc.Find("h3").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"Burger & Co", "Second"}, names)

	card := doc.Find("div[style*='padding']").First()
	text := card.Text()
	assert.Contains(t, text, "طريق الملك فهد، الرياض")
	assert.Contains(t, text, "50 – 75 ر.س")
	assert.Contains(t, text, "1:00 م – 2:00 ص")
	assert.Contains(t, text, "4.5 (120 مراجعة)")
	assert.Contains(t, text, "توصيل، سفري")

	maps, ok := card.Find("a:contains('فتح في خرائط Google')").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://maps.google.com/?cid=1&x=2", maps)

	site, ok := card.Find("a:contains('زيارة الموقع')").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://burger.example/", site)

	tel, ok := card.Find("a[href^='tel:']").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "tel:011%20000%200000", tel)

	hours := card.Find("details li").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, fullItem().FullHours, hours)
}

func TestHTML_MissingLinksUseDash(t *testing.T) {
	it := fullItem()
	it.Website = ""
	it.MapsURI = "  "
	it.Phone = ""
	it.FullHours = nil
	it.Rating = nil
	it.ServiceOptions = []string{}

	out := HTML([]model.Item{it}, genDate)
	doc := parse(t, out)

	assert.Equal(t, 0, doc.Find("a").Length())
	assert.Equal(t, 0, doc.Find("details").Length())
	assert.NotContains(t, out, "التقييم")
	assert.NotContains(t, out, "خيارات الخدمة")

	doc.Find("div > div > div").Each(func(_ int, s *goquery.Selection) {
		label := s.Find("strong").Text()
		switch label {
		case "الهاتف:", "خرائط Google:", "الموقع الإلكتروني:", "الطبق المميز:":
			assert.Equal(t, label+" —", strings.TrimSpace(s.Text()))
		}
	})
}

func TestHTML_DefaultsForEmptyFields(t *testing.T) {
	doc := parse(t, HTML([]model.Item{{}}, genDate))
	text := doc.Text()

	assert.Equal(t, "مطعم", doc.Find("h3").Text())
	assert.Contains(t, text, "السعر للشخص: غير محدد")
	assert.Contains(t, text, "العنوان: —")
}

func TestHTML_EscapesMarkup(t *testing.T) {
	it := fullItem()
	it.Name = `<script>alert("x")</script> & Sons`
	it.Address = "<b>bold</b>"
	it.FullHours = []string{"<i>الاثنين</i>"}
	it.SignatureDish = "Fish & <Chips>"

	out := HTML([]model.Item{it}, genDate)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>bold</b>")
	assert.NotContains(t, out, "<i>")
	assert.NotContains(t, out, "<Chips>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&amp; Sons")
	assert.Contains(t, out, "Fish &amp; &lt;Chips&gt;")

	doc := parse(t, out)
	assert.Equal(t, it.Name, doc.Find("h3").Text())
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestHTML_UnsafeURLNeutralized(t *testing.T) {
	it := fullItem()
	it.Website = "javascript:alert(1)"

	out := HTML([]model.Item{it}, genDate)
	assert.NotContains(t, out, "javascript:")
}

func TestHTML_Idempotent(t *testing.T) {
	items := []model.Item{fullItem(), {Name: "Plain"}}
	a := HTML(items, genDate)
	b := HTML(items, genDate.Add(3*time.Hour))
	assert.Equal(t, a, b)

	c := HTML(items, genDate.AddDate(0, 0, 1))
	assert.NotEqual(t, a, c)
	assert.Equal(t, strings.Replace(a, "2026-10-18", "2026-10-19", 1), c)
}

func TestRender_Document(t *testing.T) {
	doc := Render([]model.Item{fullItem()}, "أفضل مطاعم برجر في الرياض", genDate)

	assert.Equal(t, "أفضل مطاعم برجر في الرياض", doc.Title)
	assert.Equal(t, genDate, doc.GeneratedAt)
	assert.Equal(t, HTML([]model.Item{fullItem()}, genDate), doc.HTML)
}
