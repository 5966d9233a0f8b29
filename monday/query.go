package monday

import (
	"fmt"
	"strconv"
	"strings"
)

// Query selects one page of items. An empty Cursor asks for the first page
// of BoardID; otherwise the page after Cursor is requested.
type Query struct {
	BoardID   string
	Limit     int
	ColumnIDs []string
	Cursor    string
}

// String renders the GraphQL document sent as the "query" field.
func (q Query) String() string {
	var b strings.Builder

	b.WriteString("query {\n")
	if q.Cursor == "" {
		fmt.Fprintf(&b, "  boards(ids: %s) {\n", q.BoardID)
		fmt.Fprintf(&b, "    items_page(limit: %d) {\n", q.Limit)
		writeItemsPage(&b, q.ColumnIDs, "      ")
		b.WriteString("    }\n")
		b.WriteString("  }\n")
	} else {
		fmt.Fprintf(&b, "  next_items_page(limit: %d, cursor: %s) {\n", q.Limit, strconv.Quote(q.Cursor))
		writeItemsPage(&b, q.ColumnIDs, "    ")
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")

	return b.String()
}

func writeItemsPage(b *strings.Builder, columnIDs []string, indent string) {
	quoted := make([]string, len(columnIDs))
	for i, id := range columnIDs {
		quoted[i] = strconv.Quote(id)
	}

	b.WriteString(indent + "cursor\n")
	b.WriteString(indent + "items {\n")
	b.WriteString(indent + "  name\n")
	fmt.Fprintf(b, "%s  column_values(ids: [%s]) {\n", indent, strings.Join(quoted, ", "))
	b.WriteString(indent + "    id\n")
	b.WriteString(indent + "    text\n")
	b.WriteString(indent + "  }\n")
	b.WriteString(indent + "}\n")
}
