package analysis

import (
	"bytes"
	"context"
	"net/http"

	"golang.org/x/net/html"
)

// PageContext loads the dashboard page and reads the values the server
// renders onto its root element: the account's accent and whether the
// session is authenticated.
func (c *Client) PageContext(ctx context.Context) (*PageContext, error) {
	raw, err := c.send(ctx, http.MethodGet, "/", nil, nil, "")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw.body)) == 0 {
		return nil, &EmptyResponseError{}
	}
	return ParsePageContext(raw.body)
}

// ParsePageContext extracts data-server-accent and data-auth from the <html> element.
// A missing accent attribute means "blue".
func ParsePageContext(page []byte) (*PageContext, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, &MalformedResponseError{Body: string(page), Err: err}
	}

	pc := &PageContext{ServerAccent: "blue"}
	root := findElement(doc, "html")
	if root == nil {
		return pc, nil
	}

	for _, attr := range root.Attr {
		switch attr.Key {
		case "data-server-accent":
			if attr.Val != "" {
				pc.ServerAccent = attr.Val
			}
		case "data-auth":
			pc.Authenticated = attr.Val == "1"
		}
	}
	return pc, nil
}

// findElement returns the first element named tag in document order
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
