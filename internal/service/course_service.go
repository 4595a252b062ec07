package service

import (
	"context"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type CourseAdminStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindPublishedByPath(ctx context.Context, pathSlug string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id string, update bson.M) error
}

type ProgressReader interface {
	FindByLearnerAndPath(ctx context.Context, learnerID, pathSlug string) ([]models.CourseProgress, error)
}

// CourseService serves catalog reads and the thin authoring surface. The
// engine treats course definitions as immutable inputs; authoring writes
// go through here so learners only ever see published content.
type CourseService struct {
	Courses  CourseAdminStore
	Progress ProgressReader

	now func() time.Time
}

func NewCourseService(courses CourseAdminStore, progress ProgressReader) *CourseService {
	return &CourseService{Courses: courses, Progress: progress, now: time.Now}
}

// GetPublished returns a course for learner display; anything not
// published reads as absent.
func (s *CourseService) GetPublished(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.Courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.Visible() {
		return nil, engine.ErrNotFound
	}
	return course, nil
}

// CourseListing annotates a published course with the learner's
// prerequisite lock state.
type CourseListing struct {
	Course models.Course `json:"course"`
	Locked bool          `json:"locked"`
}

// ListPathCourses returns the path's published courses with lock
// annotations derived from the learner's completed set.
func (s *CourseService) ListPathCourses(ctx context.Context, learnerID, pathSlug string) ([]CourseListing, error) {
	courses, err := s.Courses.FindPublishedByPath(ctx, pathSlug)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]bool)
	if learnerID != "" {
		rows, err := s.Progress.FindByLearnerAndPath(ctx, learnerID, pathSlug)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			completed[rows[i].CourseID] = rows[i].CourseCompleted
		}
	}

	listings := make([]CourseListing, 0, len(courses))
	for i := range courses {
		listings = append(listings, CourseListing{
			Course: courses[i],
			Locked: engine.CourseLocked(&courses[i], completed),
		})
	}
	return listings, nil
}

func (s *CourseService) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.Status == "" {
		course.Status = models.CourseDraft
	}
	now := s.now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	return s.Courses.Create(ctx, course)
}

func (s *CourseService) Update(ctx context.Context, id string, update bson.M) error {
	update["updated_at"] = s.now().UTC()
	return s.Courses.Update(ctx, id, update)
}
