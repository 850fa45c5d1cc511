package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// ItemMUS is the MUS serializer for Item.
var ItemMUS = itemMUS{}

// CacheEntryMUS is the MUS serializer for CacheEntry.
var CacheEntryMUS = cacheEntryMUS{}

type itemMUS struct{}

func (s itemMUS) Marshal(v Item, bs []byte) (n int) {
	n = varint.Int.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += raw.Float64.Marshal(v.Price, bs[n:])
	return n + varint.Int.Marshal(v.Stock, bs[n:])
}

func (s itemMUS) Unmarshal(bs []byte) (v Item, n int, err error) {
	v.ID, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Price, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Stock, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s itemMUS) Size(v Item) (size int) {
	size = varint.Int.Size(v.ID)
	size += ord.String.Size(v.Title)
	size += raw.Float64.Size(v.Price)
	return size + varint.Int.Size(v.Stock)
}

func (s itemMUS) Skip(bs []byte) (n int, err error) {
	n, err = varint.Int.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}

type cacheEntryMUS struct{}

// Items are written as a varint count followed by each item.
func (s cacheEntryMUS) Marshal(v CacheEntry, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Query), bs)
	n += varint.Int.Marshal(len(v.Items), bs[n:])
	for _, item := range v.Items {
		n += ItemMUS.Marshal(item, bs[n:])
	}
	return n
}

func (s cacheEntryMUS) Unmarshal(bs []byte) (v CacheEntry, n int, err error) {
	var q string
	q, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Query = Query(q)
	var (
		n1    int
		count int
	)
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	// every item occupies at least one byte per field
	if count < 0 || count > len(bs)-n {
		err = ErrMalformedEntry
		return
	}
	v.Items = make([]Item, count)
	for i := range count {
		v.Items[i], n1, err = ItemMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s cacheEntryMUS) Size(v CacheEntry) (size int) {
	size = ord.String.Size(string(v.Query))
	size += varint.Int.Size(len(v.Items))
	for _, item := range v.Items {
		size += ItemMUS.Size(item)
	}
	return size
}
