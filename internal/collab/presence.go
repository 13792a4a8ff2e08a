package collab

import (
	"slices"
	"sort"
)

// Presence tracks the viewers of one room and what each has selected.
// It is only touched from the hub goroutine.
type Presence struct {
	viewers map[string]*Viewer // clientID -> viewer
}

func NewPresence() *Presence {
	return &Presence{viewers: make(map[string]*Viewer)}
}

func (p *Presence) Join(c *Client) Viewer {
	v := &Viewer{ClientID: c.ClientID, UserID: c.UserID, DisplayName: c.DisplayName}
	p.viewers[c.ClientID] = v
	return *v
}

func (p *Presence) Leave(clientID string) {
	delete(p.viewers, clientID)
}

func (p *Presence) Select(clientID string, ids []string) {
	if v, ok := p.viewers[clientID]; ok {
		v.Selection = slices.Clone(ids)
	}
}

func (p *Presence) Len() int { return len(p.viewers) }

// All returns the viewers ordered by client ID.
func (p *Presence) All() []Viewer {
	out := make([]Viewer, 0, len(p.viewers))
	for _, v := range p.viewers {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

func (p *Presence) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Viewers: p.All()})
}
