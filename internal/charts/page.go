package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
)

// RenderPage writes every figure into one HTML page, in order. Each position
// gets its own DOM id, so repeated figures still draw into separate boxes.
func RenderPage(w io.Writer, title string, figures []Figure) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	for i, f := range figures {
		page.AddCharts(pageCharter(f, i))
	}
	return page.Render(w)
}

// PageID is the DOM id of the figure at position i of a page.
func PageID(f Figure, i int) string {
	return fmt.Sprintf("%s_%d", f.ID(), i+1)
}

func pageCharter(f Figure, i int) components.Charter {
	if s, ok := f.(interface {
		charterAt(id string) components.Charter
	}); ok {
		return s.charterAt(PageID(f, i))
	}
	return f.Charter()
}
