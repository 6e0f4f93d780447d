package catalog

import (
	"strconv"
	"strings"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
)

// DefaultPlaceholderImage is shown when a product has no images at all.
const DefaultPlaceholderImage = "https://via.placeholder.com/800x600?text=No+Image"

// Slide is one carousel image.
type Slide struct {
	URL         string
	Active      bool
	Placeholder bool
}

// Carousel is the image strip of the product detail modal.
type Carousel struct {
	ID           string
	Slides       []Slide
	ShowControls bool
}

// BuildCarousel derives slides from the product images, falling back to the
// primary image and then to a single placeholder. The first slide is active
// and navigation controls appear only with more than one slide.
func BuildCarousel(detail *catalogapi.ProductDetail, placeholder string) Carousel {
	if strings.TrimSpace(placeholder) == "" {
		placeholder = DefaultPlaceholderImage
	}
	carousel := Carousel{}
	if detail == nil {
		carousel.ID = "carousel"
		carousel.Slides = []Slide{{URL: placeholder, Active: true, Placeholder: true}}
		return carousel
	}
	carousel.ID = "carousel-" + strconv.FormatInt(detail.ID, 10)

	urls := make([]string, 0, len(detail.Images))
	for _, u := range detail.Images {
		if strings.TrimSpace(u) != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 && strings.TrimSpace(detail.PrimaryImageURL) != "" {
		urls = append(urls, detail.PrimaryImageURL)
	}
	if len(urls) == 0 {
		carousel.Slides = []Slide{{URL: placeholder, Active: true, Placeholder: true}}
		return carousel
	}

	carousel.Slides = make([]Slide, len(urls))
	for i, u := range urls {
		carousel.Slides[i] = Slide{URL: u, Active: i == 0}
	}
	carousel.ShowControls = len(carousel.Slides) > 1
	return carousel
}
