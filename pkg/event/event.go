// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	VehicleAdded        Type = "vehicle_added"
	VehicleCollided     Type = "vehicle_collided"
	TurretRestricted    Type = "turret_restricted"
	ClusterCreated      Type = "cluster_created"
	ClusterMerged       Type = "cluster_merged"
	ProjectileFired     Type = "projectile_fired"
	ProjectileDestroyed Type = "projectile_destroyed"
	SimulationStarted   Type = "simulation_started"
	SimulationEnded     Type = "simulation_ended"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Subscription identifies one registered handler
type Subscription struct {
	ID        uint64
	EventType Type
	bus       *Bus
}

// Cancel removes the handler from the bus
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.unsubscribe(s.EventType, s.ID)
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})
	return &Subscription{ID: id, EventType: eventType, bus: b}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// VehicleEvent reports something that happened to one vehicle
type VehicleEvent struct {
	BaseEvent
	VehicleID uint64
	Tick      uint64
	X, Y      float64
}

// NewVehicleEvent creates a new vehicle event
func NewVehicleEvent(eventType Type, source interface{}, vehicleID, tick uint64, x, y float64) *VehicleEvent {
	return &VehicleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		VehicleID: vehicleID,
		Tick:      tick,
		X:         x,
		Y:         y,
	}
}

// TurretEvent reports a cone restriction on a vehicle sensor
type TurretEvent struct {
	BaseEvent
	VehicleID   uint64
	Sensor      string
	Restriction int
}

// NewTurretEvent creates a new turret event
func NewTurretEvent(source interface{}, vehicleID uint64, sensor string, restriction int) *TurretEvent {
	return &TurretEvent{
		BaseEvent: BaseEvent{
			EventType: TurretRestricted,
			Source:    source,
		},
		VehicleID:   vehicleID,
		Sensor:      sensor,
		Restriction: restriction,
	}
}

// ClusterEvent reports cartographer changes for one vehicle
type ClusterEvent struct {
	BaseEvent
	VehicleID uint64
	Count     int
	Total     int
}

// NewClusterEvent creates a new cluster event
func NewClusterEvent(eventType Type, source interface{}, vehicleID uint64, count, total int) *ClusterEvent {
	return &ClusterEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		VehicleID: vehicleID,
		Count:     count,
		Total:     total,
	}
}

// ProjectileEvent reports a projectile launch or retirement
type ProjectileEvent struct {
	BaseEvent
	ProjectileID uint64
	OwnerID      uint64
	Kind         string
	Hit          bool
}

// NewProjectileEvent creates a new projectile event
func NewProjectileEvent(eventType Type, source interface{}, projectileID, ownerID uint64, kind string, hit bool) *ProjectileEvent {
	return &ProjectileEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ProjectileID: projectileID,
		OwnerID:      ownerID,
		Kind:         kind,
		Hit:          hit,
	}
}
