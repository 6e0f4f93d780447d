package catalogapi

import (
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const staticSessionCookie = "catalog_session"

// AllowedImageExtensions lists the image types the backend accepts.
var AllowedImageExtensions = []string{"jpg", "jpeg", "png", "webp", "gif"}

// StaticConfig seeds a StaticService.
type StaticConfig struct {
	AdminUsername string
	AdminPassword string
	Categories    []string
}

// StaticService is an in-memory catalog backend used for local development
// and tests when no backend URL is configured.
type StaticService struct {
	mu         sync.RWMutex
	users      map[string]*staticUser
	sessions   map[Credentials]int64
	categories map[int64]*Category
	products   map[int64]*staticProduct
	media      map[string]staticMedia
	nextID     int64
	calls      []string
}

type staticUser struct {
	identity Identity
	hash     []byte
}

type staticProduct struct {
	ProductSummary
	Description string
	Images      []string
}

type staticMedia struct {
	contentType string
	data        []byte
}

var _ Service = (*StaticService)(nil)

// NewStaticService constructs a StaticService seeded with an admin account
// and the configured categories.
func NewStaticService(cfg StaticConfig) *StaticService {
	s := &StaticService{
		users:      make(map[string]*staticUser),
		sessions:   make(map[Credentials]int64),
		categories: make(map[int64]*Category),
		products:   make(map[int64]*staticProduct),
		media:      make(map[string]staticMedia),
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "ChangeMe123!"
	}
	s.addUser(username, password, RoleAdmin)
	for _, name := range cfg.Categories {
		name = strings.TrimSpace(name)
		if name == "" || s.categoryByName(name) != nil {
			continue
		}
		id := s.id()
		s.categories[id] = &Category{ID: id, Name: name}
	}
	return s
}

// AddUser registers an account with the given role. Intended for tests.
func (s *StaticService) AddUser(username, password, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUser(username, password, role)
}

// SeedProduct inserts a product directly, bypassing admin checks.
func (s *StaticService) SeedProduct(detail ProductDetail) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	p := &staticProduct{
		ProductSummary: detail.ProductSummary,
		Description:    detail.Description,
		Images:         append([]string(nil), detail.Images...),
	}
	p.ID = id
	if len(p.Images) > 0 && p.PrimaryImageURL == "" {
		p.PrimaryImageURL = p.Images[0]
	}
	s.products[id] = p
	return id
}

// Calls returns the operations invoked so far, in order.
func (s *StaticService) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.calls...)
}

// Media serves uploaded image bytes under /uploads/.
func (s *StaticService) Media() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		s.mu.RLock()
		item, ok := s.media[name]
		s.mu.RUnlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", item.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(item.data)))
		_, _ = w.Write(item.data)
	})
}

// Login verifies the password and opens a backend session.
func (s *StaticService) Login(ctx context.Context, username, password string) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("auth.login")

	user, ok := s.users[username]
	if !ok || bcrypt.CompareHashAndPassword(user.hash, []byte(password)) != nil {
		return "", &APIError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	creds := Credentials(staticSessionCookie + "=" + uuid.NewString())
	s.sessions[creds] = user.identity.ID
	return creds, nil
}

// Register creates a regular user.
func (s *StaticService) Register(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("auth.register")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return &APIError{Status: http.StatusBadRequest, Message: "username and password required"}
	}
	if _, exists := s.users[username]; exists {
		return &APIError{Status: http.StatusConflict, Message: "username taken"}
	}
	s.addUser(username, password, RoleUser)
	return nil
}

// Logout drops the backend session.
func (s *StaticService) Logout(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("auth.logout")

	if _, ok := s.sessions[creds]; !ok {
		return unauthorized()
	}
	delete(s.sessions, creds)
	return nil
}

// Me resolves the identity for creds.
func (s *StaticService) Me(ctx context.Context, creds Credentials) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("auth.me")

	user, err := s.userFor(creds)
	if err != nil {
		return nil, err
	}
	identity := user.identity
	return &identity, nil
}

// Categories lists categories ordered by name.
func (s *StaticService) Categories(ctx context.Context, creds Credentials) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("categories.list")

	if _, err := s.userFor(creds); err != nil {
		return nil, err
	}
	result := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// CreateCategory adds a category; admin only.
func (s *StaticService) CreateCategory(ctx context.Context, creds Credentials, name string) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("categories.create")

	if err := s.requireAdmin(creds); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "name required"}
	}
	if s.categoryByName(name) != nil {
		return nil, &APIError{Status: http.StatusConflict, Message: "exists"}
	}
	id := s.id()
	category := &Category{ID: id, Name: name}
	s.categories[id] = category
	copied := *category
	return &copied, nil
}

// RenameCategory renames a category; admin only.
func (s *StaticService) RenameCategory(ctx context.Context, creds Credentials, id int64, name string) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("categories.rename")

	if err := s.requireAdmin(creds); err != nil {
		return nil, err
	}
	category, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "name required"}
	}
	category.Name = name
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryName = name
		}
	}
	copied := *category
	return &copied, nil
}

// DeleteCategory removes a category and detaches its products.
func (s *StaticService) DeleteCategory(ctx context.Context, creds Credentials, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("categories.delete")

	if err := s.requireAdmin(creds); err != nil {
		return err
	}
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			p.CategoryName = ""
		}
	}
	return nil
}

// Products lists products matching filter, newest first.
func (s *StaticService) Products(ctx context.Context, creds Credentials, filter ProductFilter) ([]ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("products.list?" + filter.Encode())

	if _, err := s.userFor(creds); err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]ProductSummary, 0, len(s.products))
	for _, p := range s.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) && !strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if filter.CategoryID > 0 && (p.CategoryID == nil || *p.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.InStock != nil && p.InStock != *filter.InStock {
			continue
		}
		result = append(result, p.ProductSummary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// Product returns one product.
func (s *StaticService) Product(ctx context.Context, creds Credentials, id int64) (*ProductDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("products.get")

	if _, err := s.userFor(creds); err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	detail := &ProductDetail{
		ProductSummary: p.ProductSummary,
		Description:    p.Description,
		Images:         append([]string(nil), p.Images...),
	}
	if len(detail.Images) == 0 && detail.PrimaryImageURL != "" {
		detail.Images = []string{detail.PrimaryImageURL}
	}
	return detail, nil
}

// CreateProduct stores a product; at least one image is required.
func (s *StaticService) CreateProduct(ctx context.Context, creds Credentials, input ProductInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("products.create")

	if err := s.requireAdmin(creds); err != nil {
		return 0, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, &APIError{Status: http.StatusBadRequest, Message: "name required"}
	}
	if len(input.Images) == 0 {
		return 0, &APIError{Status: http.StatusBadRequest, Message: "at least one image required"}
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return 0, err
	}
	urls, err := s.storeImages(input.Images)
	if err != nil {
		return 0, err
	}

	id := s.id()
	p := &staticProduct{
		ProductSummary: ProductSummary{
			ID:      id,
			Name:    name,
			Price:   price,
			InStock: input.InStock,
		},
		Description: input.Description,
		Images:      urls,
	}
	s.assignCategory(p, input.CategoryID)
	if len(urls) > 0 {
		p.PrimaryImageURL = urls[0]
	}
	s.products[id] = p
	return id, nil
}

// UpdateProduct overwrites fields and appends new images.
func (s *StaticService) UpdateProduct(ctx context.Context, creds Credentials, id int64, input ProductInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("products.update")

	if err := s.requireAdmin(creds); err != nil {
		return err
	}
	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	price := p.Price
	if strings.TrimSpace(input.Price) != "" {
		parsed, err := parsePrice(input.Price)
		if err != nil {
			return err
		}
		price = parsed
	}
	urls, err := s.storeImages(input.Images)
	if err != nil {
		return err
	}

	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Price = price
	p.InStock = input.InStock
	s.assignCategory(p, input.CategoryID)
	p.Images = append(p.Images, urls...)
	if p.PrimaryImageURL == "" && len(p.Images) > 0 {
		p.PrimaryImageURL = p.Images[0]
	}
	return nil
}

// DeleteProduct removes a product.
func (s *StaticService) DeleteProduct(ctx context.Context, creds Credentials, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("products.delete")

	if err := s.requireAdmin(creds); err != nil {
		return err
	}
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *StaticService) addUser(username, password, role string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.users[username] = &staticUser{
		identity: Identity{ID: s.id(), Username: username, Role: role},
		hash:     hash,
	}
}

func (s *StaticService) userFor(creds Credentials) (*staticUser, error) {
	userID, ok := s.sessions[creds]
	if !ok {
		return nil, unauthorized()
	}
	for _, u := range s.users {
		if u.identity.ID == userID {
			return u, nil
		}
	}
	return nil, unauthorized()
}

func (s *StaticService) requireAdmin(creds Credentials) error {
	user, err := s.userFor(creds)
	if err != nil {
		return err
	}
	if user.identity.Role != RoleAdmin {
		return &APIError{Status: http.StatusForbidden, Message: "forbidden"}
	}
	return nil
}

func (s *StaticService) categoryByName(name string) *Category {
	for _, c := range s.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *StaticService) assignCategory(p *staticProduct, raw string) {
	p.CategoryID = nil
	p.CategoryName = ""
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return
	}
	p.CategoryID = &id
	if c, ok := s.categories[id]; ok {
		p.CategoryName = c.Name
	}
}

func (s *StaticService) storeImages(images []ImageUpload) ([]string, error) {
	type pendingMedia struct {
		name  string
		media staticMedia
	}
	// Every file is read and checked before any is stored, so a rejected
	// upload leaves no media behind.
	pending := make([]pendingMedia, 0, len(images))
	for _, img := range images {
		if img.Content == nil || img.Filename == "" {
			continue
		}
		ext, ok := ImageExtension(img.Filename)
		if !ok {
			return nil, &APIError{Status: http.StatusBadRequest, Message: "invalid image type"}
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, img.Content); err != nil {
			return nil, err
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(buf.Bytes())
		}
		pending = append(pending, pendingMedia{
			name:  strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext,
			media: staticMedia{contentType: contentType, data: buf.Bytes()},
		})
	}

	urls := make([]string, 0, len(pending))
	for _, p := range pending {
		s.media[p.name] = p.media
		urls = append(urls, "/uploads/"+p.name)
	}
	return urls, nil
}

func (s *StaticService) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *StaticService) record(op string) {
	s.calls = append(s.calls, op)
}

// ImageExtension returns the lower-cased extension of filename and whether
// it is an accepted image type.
func ImageExtension(filename string) (string, bool) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "", false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return ext, true
		}
	}
	return ext, false
}

func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &APIError{Status: http.StatusBadRequest, Message: "invalid price"}
	}
	return math.Round(price*100) / 100, nil
}

func unauthorized() error {
	return &APIError{Status: http.StatusUnauthorized, Message: "unauthorized"}
}
