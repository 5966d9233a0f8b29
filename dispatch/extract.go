package dispatch

import "github.com/pure-golang/board-mailer/monday"

// Recipient is the (name, email, content) triple taken from one item.
type Recipient struct {
	Name    string
	Email   string
	Content string
}

// Columns names the column ids holding the address and the message body.
type Columns struct {
	Email   string
	Content string
}

// Extract maps item to a Recipient using the first column value matching
// each id. ok is false when either the email or the content is empty.
func Extract(item monday.Item, cols Columns) (r Recipient, ok bool) {
	r.Name = item.Name
	r.Email = columnText(item, cols.Email)
	r.Content = columnText(item, cols.Content)

	return r, r.Email != "" && r.Content != ""
}

func columnText(item monday.Item, id string) string {
	for _, cv := range item.ColumnValues {
		if cv.ID == id {
			return cv.Text
		}
	}
	return ""
}
