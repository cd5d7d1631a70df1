package service

import (
	"fmt"
	"io"

	"github.com/yuku/sharedpool/cache"
)

// ProductService keeps the product catalogue in the shared cache.
type ProductService struct {
	cache *cache.Cache
	out   io.Writer
}

// NewProductService creates a ProductService printing to out.
func NewProductService(c *cache.Cache, out io.Writer) *ProductService {
	return &ProductService{cache: c, out: out}
}

// LoadProducts stores the catalogue in the cache.
func (s *ProductService) LoadProducts() {
	s.cache.Put("Product 1", "Laptop")
	s.cache.Put("product 2", "Mobile")
	fmt.Fprintln(s.out, "Products added to cache.")
}

// GetProduct looks up productID and prints the result.
func (s *ProductService) GetProduct(productID string) (string, bool) {
	product, ok := s.cache.Get(productID)
	display := product
	if !ok {
		display = cache.NotFound
	}
	fmt.Fprintf(s.out, "Retrieved from cache: %s\n", display)
	return product, ok
}
