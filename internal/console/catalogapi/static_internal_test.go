package catalogapi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticServiceRejectedUploadStoresNoMedia(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(StaticConfig{AdminUsername: "admin", AdminPassword: "secret"})
	ctx := context.Background()
	creds, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)

	images := func() []ImageUpload {
		return []ImageUpload{
			{Filename: "ok.png", ContentType: "image/png", Content: strings.NewReader("png")},
			{Filename: "bad.txt", Content: strings.NewReader("text")},
		}
	}

	_, err = svc.CreateProduct(ctx, creds, ProductInput{Name: "Lamp", Price: "10", Images: images()})
	require.Equal(t, "invalid image type", ErrorMessage(err))
	require.Empty(t, svc.media)

	id, err := svc.CreateProduct(ctx, creds, ProductInput{
		Name:   "Lamp",
		Price:  "10",
		Images: []ImageUpload{{Filename: "lamp.jpg", Content: strings.NewReader("jpg")}},
	})
	require.NoError(t, err)
	require.Len(t, svc.media, 1)

	err = svc.UpdateProduct(ctx, creds, id, ProductInput{Name: "Lamp", Images: images()})
	require.Equal(t, "invalid image type", ErrorMessage(err))
	require.Len(t, svc.media, 1)
	require.Len(t, svc.products[id].Images, 1)
}
