package heatload

import "fmt"

// Building is an ordered, read-only collection of rooms.
type Building struct {
	rooms []Room
}

// NewBuilding validates the rooms and keeps its own copy of them.
func NewBuilding(rooms ...Room) (*Building, error) {
	b := &Building{rooms: make([]Room, 0, len(rooms))}
	for i, r := range rooms {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("room %d (%s): %w", i+1, r.Name, err)
		}
		b.rooms = append(b.rooms, r.clone())
	}
	return b, nil
}

// Rooms returns a copy of the rooms in their original order.
func (b *Building) Rooms() []Room {
	if b == nil {
		return nil
	}
	out := make([]Room, len(b.rooms))
	for i, r := range b.rooms {
		out[i] = r.clone()
	}
	return out
}

func (b *Building) Len() int {
	if b == nil {
		return 0
	}
	return len(b.rooms)
}

func (b *Building) Room(name string) (Room, error) {
	if b != nil {
		for _, r := range b.rooms {
			if r.Name == name {
				return r.clone(), nil
			}
		}
	}
	return Room{}, fmt.Errorf("%w: %q", ErrRoomNotFound, name)
}

// TotalHeatLoad sums all room loads in W. An empty building has no load.
func (b *Building) TotalHeatLoad() float64 {
	if b == nil {
		return 0
	}
	var sum float64
	for _, r := range b.rooms {
		sum += r.TotalHeatLoad()
	}
	return sum
}
