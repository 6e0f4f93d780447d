package catalogapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// WriteMultipart encodes the input as multipart/form-data and returns the
// content type including the boundary. Fields are always written; one
// "images" part is written per upload.
func (in ProductInput) WriteMultipart(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	fields := []struct{ name, value string }{
		{"name", in.Name},
		{"description", in.Description},
		{"price", in.Price},
		{"category_id", in.CategoryID},
		{"in_stock", strconv.FormatBool(in.InStock)},
	}
	for _, field := range fields {
		if err := mw.WriteField(field.name, field.value); err != nil {
			return "", fmt.Errorf("catalogapi: write field %s: %w", field.name, err)
		}
	}
	for _, img := range in.Images {
		if img.Content == nil {
			continue
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return "", fmt.Errorf("catalogapi: create image part: %w", err)
		}
		if _, err := io.Copy(part, img.Content); err != nil {
			return "", fmt.Errorf("catalogapi: copy image %q: %w", img.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("catalogapi: close multipart: %w", err)
	}
	return mw.FormDataContentType(), nil
}
