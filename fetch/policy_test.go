package fetch_test

import (
	"testing"

	"github.com/fwojciec/scrapetmpl/fetch"
	"github.com/stretchr/testify/assert"
)

func TestDomainPolicy_PreferRendered(t *testing.T) {
	t.Parallel()

	p := fetch.NewDomainPolicy(" Go.ID ", ".kemenkeu.go.id", "", "example.com")

	assert.True(t, p.PreferRendered("go.id"))
	assert.True(t, p.PreferRendered("www.kemenperin.go.id"))
	assert.True(t, p.PreferRendered("KEMENKEU.GO.ID."))
	assert.True(t, p.PreferRendered("news.example.com"))
	assert.False(t, p.PreferRendered("logo.id"))
	assert.False(t, p.PreferRendered("notexample.com"))
	assert.False(t, p.PreferRendered("example.com.evil.net"))
	assert.Equal(t, []string{"go.id", "kemenkeu.go.id", "example.com"}, p.Domains())
}

func TestParseDomainList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"go.id", "gov.id"}, fetch.ParseDomainList(" go.id, ,gov.id,"))
	assert.Nil(t, fetch.ParseDomainList(""))
}
