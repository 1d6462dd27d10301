package notifications

import (
	"context"
	"encoding/json"

	"quill/internal/middleware"
	"quill/internal/observability"
	"quill/internal/repository"
)

// NewPostNotification is the payload delivered to each subscriber of the
// community a post was published into.
type NewPostNotification struct {
	Type        string `json:"type"`
	PostID      uint   `json:"post_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CommunityID uint   `json:"community_id"`
	Community   string `json:"community"`
}

// MailOutbox queues new-post notification jobs and delivers them from a
// single background worker. Enqueueing never blocks the publishing request;
// when the queue is full the job is dropped and counted. Delivery is
// at-most-once.
type MailOutbox struct {
	jobs          chan uint
	postRepo      repository.PostRepository
	communityRepo repository.CommunityRepository
	notifier      *Notifier
}

func NewMailOutbox(
	size int,
	postRepo repository.PostRepository,
	communityRepo repository.CommunityRepository,
	notifier *Notifier,
) *MailOutbox {
	if size < 1 {
		size = 1
	}
	return &MailOutbox{
		jobs:          make(chan uint, size),
		postRepo:      postRepo,
		communityRepo: communityRepo,
		notifier:      notifier,
	}
}

// NotifySubscribersAboutNewPost enqueues a delivery job without blocking.
func (o *MailOutbox) NotifySubscribersAboutNewPost(postID uint) {
	select {
	case o.jobs <- postID:
		observability.MailEnqueued.Inc()
	default:
		observability.MailDropped.Inc()
		middleware.Logger.Warn("mail outbox full, dropping notification", "post_id", postID)
	}
}

// Start runs the delivery worker until the context is cancelled.
func (o *MailOutbox) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case postID := <-o.jobs:
				if err := o.deliver(ctx, postID); err != nil {
					middleware.Logger.ErrorContext(ctx, "failed to deliver post notification",
						"post_id", postID, "error", err)
				}
			}
		}
	}()
}

func (o *MailOutbox) deliver(ctx context.Context, postID uint) error {
	post, err := o.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	// Posts outside a community have no subscribers to notify.
	if post.CommunityID == nil {
		return nil
	}

	subscriberIDs, err := o.communityRepo.SubscriberIDs(ctx, *post.CommunityID)
	if err != nil {
		return err
	}

	notification := NewPostNotification{
		Type:        "new_post",
		PostID:      post.ID,
		Title:       post.Title,
		Author:      post.Author.FullName,
		CommunityID: *post.CommunityID,
	}
	if post.Community != nil {
		notification.Community = post.Community.Name
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	for _, subscriberID := range subscriberIDs {
		if subscriberID == post.AuthorID {
			continue
		}
		if err := o.notifier.PublishUser(ctx, subscriberID, string(payload)); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish notification",
				"user_id", subscriberID, "post_id", post.ID, "error", err)
			continue
		}
		observability.MailDelivered.Inc()
	}

	return nil
}
