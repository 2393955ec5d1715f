// Package catalog declares the item entity served by rowcache and the cache
// key namespaces it uses.
package catalog

import (
	"time"

	"github.com/adeilh/rowcache/accessor"
	"github.com/adeilh/rowcache/dataservice"
	"github.com/adeilh/rowcache/remote"
)

// Item is one catalog row as the upstream catalog API returns it. New fields
// must stay optional so previously cached entries still decode.
type Item struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Operation names.
const (
	OpPageGet   = "itemsPage"
	OpPageSet   = "storeItemsPage"
	OpItemGet   = "item"
	OpItemSet   = "storeItem"
	OpItemEvict = "evictItem"
)

const (
	pagePrefix = "catalog.items.page."
	itemPrefix = "catalog.item."
)

// Accessors is the key declaration table for catalog entries.
var Accessors = accessor.Table{
	OpPageGet:   {Prefix: pagePrefix, Kind: accessor.Get},
	OpPageSet:   {Prefix: pagePrefix, Kind: accessor.Set},
	OpItemGet:   {Prefix: itemPrefix, Kind: accessor.Get},
	OpItemSet:   {Prefix: itemPrefix, Kind: accessor.Set},
	OpItemEvict: {Prefix: itemPrefix, Kind: accessor.Remove},
}

var Ops = dataservice.Ops{
	PageGet:   OpPageGet,
	PageSet:   OpPageSet,
	RowGet:    OpItemGet,
	RowSet:    OpItemSet,
	RowRemove: OpItemEvict,
}

// NewService builds the item service on top of proxy and source.
func NewService(proxy *accessor.Proxy, source remote.Source[Item], opts ...dataservice.Option) (*dataservice.Service[Item], error) {
	return dataservice.New[Item](proxy, Accessors, Ops, source, opts...)
}
