package codablejson

import (
	"sync"

	"github.com/wippyai/codablejson/internal/identity"
)

// Tables that grew past this are dropped instead of pooled.
const poolMaxTableLen = 4096

var tablePool = sync.Pool{
	New: func() any {
		return identity.NewTable()
	},
}

func getTable() *identity.Table {
	return tablePool.Get().(*identity.Table)
}

func putTable(t *identity.Table) {
	if t == nil || t.Len() > poolMaxTableLen {
		return
	}
	t.Reset()
	tablePool.Put(t)
}
