package main

import (
	"errors"
	"fmt"
	"os"

	collisionflow "github.com/PavelBfl/CollisionFlow-sub000"
	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/polygon"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	FRAME_TIME        = 1.0 / 60.0
	FRAMES            = 600
	MAX_COLLISIONS    = 64
	SCENES            = 4
	ROOM_SIZE         = 10.0
	WALL_THICKNESS    = 1.0
	DEFAULT_GRAVITY   = -9.81
	ELASTIC_RESTITUTE = 1.0
)

var errTooManyCollisions = errors.New("too many collisions in one frame")

// Body is the simulation side of a polygon, stored in its attachment slot
type Body struct {
	Name        string
	Dynamic     bool
	Restitution float64
}

// Scene is one independent room with its own dispatcher
type Scene struct {
	ID         int
	Dispatcher *collisionflow.Dispatcher
	Gravity    mgl64.Vec2
	logger     *zap.Logger
}

func main() {
	config := collisionflow.DefaultConfig()
	if len(os.Args) > 1 {
		loaded, err := collisionflow.LoadConfig(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		config = loaded
	}

	logger, err := newLogger(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Scenes are independent, each one owns its dispatcher
	var group errgroup.Group
	for id := range SCENES {
		group.Go(func() error {
			scene, err := NewScene(id, config, logger)
			if err != nil {
				return fmt.Errorf("scene %d: %w", id, err)
			}
			return scene.Run(FRAMES)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(config collisionflow.Config) (*zap.Logger, error) {
	level, err := config.Level()
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}

// NewScene builds a room of four static walls holding one box launched in a direction
// depending on the scene id.
func NewScene(id int, config collisionflow.Config, logger *zap.Logger) (*Scene, error) {
	sceneLogger := logger.With(zap.Int("scene", id))
	dispatcher, err := collisionflow.NewDispatcher(config, collisionflow.WithLogger(sceneLogger))
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		ID:         id,
		Dispatcher: dispatcher,
		Gravity:    mgl64.Vec2{0, DEFAULT_GRAVITY},
		logger:     sceneLogger,
	}

	walls := []struct {
		name     string
		min, max mgl64.Vec2
	}{
		{"floor", mgl64.Vec2{-WALL_THICKNESS, -WALL_THICKNESS}, mgl64.Vec2{ROOM_SIZE + WALL_THICKNESS, 0}},
		{"ceiling", mgl64.Vec2{-WALL_THICKNESS, ROOM_SIZE}, mgl64.Vec2{ROOM_SIZE + WALL_THICKNESS, ROOM_SIZE + WALL_THICKNESS}},
		{"left", mgl64.Vec2{-WALL_THICKNESS, 0}, mgl64.Vec2{0, ROOM_SIZE}},
		{"right", mgl64.Vec2{ROOM_SIZE, 0}, mgl64.Vec2{ROOM_SIZE + WALL_THICKNESS, ROOM_SIZE}},
	}
	for _, wall := range walls {
		if _, err := scene.addBox(wall.min, wall.max, motion.Course2{}, &Body{Name: wall.name}); err != nil {
			return nil, err
		}
	}

	velocity := mgl64.Vec2{3 + float64(id), 2 - float64(id)}
	course := motion.NewCourse2(velocity, scene.Gravity)
	body := &Body{Name: "box", Dynamic: true, Restitution: ELASTIC_RESTITUTE}
	if _, err := scene.addBox(mgl64.Vec2{4, 4}, mgl64.Vec2{5, 5}, course, body); err != nil {
		return nil, err
	}

	return scene, nil
}

func (s *Scene) addBox(min, max mgl64.Vec2, course motion.Course2, body *Body) (collisionflow.Handle, error) {
	vertices := []mgl64.Vec2{
		{min.X(), min.Y()},
		{max.X(), min.Y()},
		{max.X(), max.Y()},
		{min.X(), max.Y()},
	}

	p, err := polygon.New(s.Dispatcher.Comparer(), vertices, course)
	if err != nil {
		return 0, fmt.Errorf("box %s: %w", body.Name, err)
	}
	h, err := s.Dispatcher.AddPolygon(p)
	if err != nil {
		return 0, err
	}

	return h, s.Dispatcher.Attach(h, body)
}

// Run simulates the given number of frames.
func (s *Scene) Run(frames int) error {
	for frame := range frames {
		collisions, err := s.Step(FRAME_TIME)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if collisions > 0 {
			s.logger.Info("frame collisions", zap.Int("frame", frame), zap.Int("collisions", collisions))
		}
	}

	return nil
}

// Step consumes one frame of simulated time, responding to every batch of contacts.
func (s *Scene) Step(dt float64) (int, error) {
	remaining := dt
	for collisions := 0; ; collisions++ {
		if collisions >= MAX_COLLISIONS {
			return collisions, errTooManyCollisions
		}

		batch, err := s.Dispatcher.Offset(remaining)
		if err != nil {
			return collisions, err
		}
		if batch == nil {
			return collisions, nil
		}

		remaining = max(0, remaining-batch.Offset)
		for _, contact := range batch.Contacts {
			if err := s.respond(contact); err != nil {
				return collisions, err
			}
		}
	}
}

// respond reflects the velocity of the dynamic polygon of a contact along the contact
// normal, scaled by its restitution.
func (s *Scene) respond(contact collisionflow.Contact) error {
	edgeEntry, _ := s.Dispatcher.Get(contact.Edge.Handle)
	vertexEntry, _ := s.Dispatcher.Get(contact.Vertex.Handle)

	// normal points from the edge owner towards the vertex owner
	normal := edgeEntry.Polygon.Normals()[contact.Edge.Index]

	for _, target := range []struct {
		entry  *collisionflow.Entry
		normal mgl64.Vec2
	}{
		{vertexEntry, normal},
		{edgeEntry, normal.Mul(-1)},
	} {
		body, ok := target.entry.Attachment.(*Body)
		if !ok || !body.Dynamic {
			continue
		}
		rigid, ok := target.entry.Polygon.(polygon.Rigid)
		if !ok {
			continue
		}

		course := rigid.Course()
		velocity := course.Velocity()
		approach := velocity.Dot(target.normal)
		if approach >= 0 {
			continue
		}

		velocity = velocity.Sub(target.normal.Mul((1 + body.Restitution) * approach))
		if err := s.Dispatcher.SetCourse(target.entry.Handle, motion.NewCourse2(velocity, course.Acceleration())); err != nil {
			return err
		}

		s.logger.Debug("bounce",
			zap.String("body", body.Name),
			zap.Float64("vx", velocity.X()),
			zap.Float64("vy", velocity.Y()),
		)
	}

	return nil
}
