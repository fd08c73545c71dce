// Package translation keeps the message catalog that translation call sites
// are reported to and replaced from.
package translation

import (
	"encoding/json"
	"slices"
	"sync"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/zerr"
)

// Message is one catalog entry. Messages are identified by text and hint.
type Message struct {
	ID         int    `json:"id"`
	Text       string `json:"message"`
	Hint       string `json:"hint,omitempty"`
	WithParams bool   `json:"withParams,omitempty"`
	JustFormat bool   `json:"justFormat,omitempty"`
}

type messageKey struct {
	text string
	hint string
}

// Catalog assigns stable numeric ids to messages. Ids are never reused.
type Catalog struct {
	mu       sync.Mutex
	ids      map[messageKey]int
	messages []Message
	dirty    bool
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{ids: make(map[messageKey]int)}
}

// Load merges a stored catalog. Loaded messages keep their ids.
func (c *Catalog) Load(data []byte) error {
	var stored []Message
	if err := json.Unmarshal(data, &stored); err != nil {
		return zerr.Wrap(err, domain.ErrCatalogParseFailed.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	used := make(map[int]struct{}, len(c.messages)+len(stored))
	for _, m := range c.messages {
		used[m.ID] = struct{}{}
	}
	// Nothing is merged unless the whole catalog is consistent.
	added := make(map[messageKey]Message, len(stored))
	var order []messageKey
	for _, m := range stored {
		k := messageKey{m.Text, m.Hint}
		if _, ok := c.ids[k]; ok {
			continue
		}
		if prev, ok := added[k]; ok {
			if prev.ID != m.ID {
				return zerr.With(zerr.Wrap(domain.ErrDuplicateMessageID, domain.ErrCatalogParseFailed.Error()), "message", m.Text)
			}
			continue
		}
		if _, ok := used[m.ID]; ok {
			return zerr.With(zerr.Wrap(domain.ErrDuplicateMessageID, domain.ErrCatalogParseFailed.Error()), "id", m.ID)
		}
		used[m.ID] = struct{}{}
		added[k] = m
		order = append(order, k)
	}
	for _, k := range order {
		c.ids[k] = added[k].ID
		c.messages = append(c.messages, added[k])
	}
	slices.SortFunc(c.messages, func(a, b Message) int { return a.ID - b.ID })
	return nil
}

// Report registers the message of a literal translation site.
func (c *Catalog) Report(site domain.TranslationSite) {
	c.Replace(site)
}

// Replace returns the id of the site's message, registering it when new.
func (c *Catalog) Replace(site domain.TranslationSite) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := messageKey{site.Message, site.Hint}
	if id, ok := c.ids[k]; ok {
		return id
	}
	id := c.nextID()
	c.ids[k] = id
	c.messages = append(c.messages, Message{
		ID:         id,
		Text:       site.Message,
		Hint:       site.Hint,
		WithParams: site.WithParams,
		JustFormat: site.JustFormat,
	})
	c.dirty = true
	return id
}

func (c *Catalog) nextID() int {
	if len(c.messages) == 0 {
		return 0
	}
	return c.messages[len(c.messages)-1].ID + 1
}

// Messages returns the catalog ordered by id.
func (c *Catalog) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Flush returns the encoded catalog when messages were added since the last
// committed flush, and nil otherwise. The caller runs commit once the data is
// stored; without it the next Flush returns the catalog again.
func (c *Catalog) Flush() (data []byte, commit func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil, func() {}, nil
	}
	data, err = json.MarshalIndent(c.messages, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	n := len(c.messages)
	commit = func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// Messages added after the snapshot still need a flush.
		if len(c.messages) == n {
			c.dirty = false
		}
	}
	return append(data, '\n'), commit, nil
}
