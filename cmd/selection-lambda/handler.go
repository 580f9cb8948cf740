package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/acceptability"
	"github.com/fpang/media-picker/internal/config"
	"github.com/fpang/media-picker/internal/filehandler"
	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/metrics"
	"github.com/fpang/media-picker/internal/selection"
	"github.com/fpang/media-picker/internal/store"
)

// service holds everything a request needs. It is built once at cold start.
type service struct {
	sessions    store.SnapshotStore
	objects     filehandler.HeadObjectAPI
	bucket      string
	cfg         config.Config
	newRecorder func() *metrics.Recorder
}

func (s *service) handle(ctx context.Context, event ActionEvent) (ActionResult, error) {
	handlerStart := time.Now()

	sessionID := event.SessionID
	if sessionID == "" {
		if event.Action != ActionAdd && event.Action != ActionCheck && event.Action != ActionList {
			return fail(ActionResult{}, fmt.Errorf("sessionId is required for %q", event.Action))
		}
		sessionID = store.NewSessionID()
	} else if err := store.ValidateSessionID(sessionID); err != nil {
		return fail(ActionResult{}, err)
	}
	result := ActionResult{SessionID: sessionID}

	bucket := s.bucket
	if event.Bucket != "" {
		bucket = event.Bucket
	}

	logger := log.With().
		Str("sessionId", sessionID).
		Str("action", event.Action).
		Int("itemCount", len(event.Items)).
		Logger()
	logger.Info().Str("bucket", bucket).Msg("Applying selection action")

	resolver := filehandler.NewS3Resolver(s.objects, bucket)
	policy, err := s.cfg.Policy(resolver)
	if err != nil {
		return fail(result, err)
	}
	sel := selection.NewStore(policy, acceptability.New(resolver, resolver, policy))

	snap, err := s.sessions.GetSnapshot(ctx, sessionID)
	if err != nil {
		return fail(result, err)
	}
	if snap != nil {
		sel.Restore(*snap)
		logger.Debug().Int("restored", sel.Count()).Msg("Session restored")
	}

	mutated := false
	switch event.Action {
	case ActionAdd:
		for _, it := range event.Items {
			r := s.add(ctx, sel, resolver, it)
			s.recordVerdict(event.Action, r)
			mutated = mutated || r.Accepted
			result.Results = append(result.Results, r)
		}
	case ActionCheck:
		for _, it := range event.Items {
			r := s.check(ctx, sel, resolver, it)
			s.recordVerdict(event.Action, r)
			result.Results = append(result.Results, r)
		}
	case ActionRemove:
		for _, it := range event.Items {
			removed := sel.Remove(media.Item{ID: resolver.ObjectID(it.Key)})
			mutated = mutated || removed
			result.Results = append(result.Results, ItemResult{Key: it.Key, Accepted: removed})
		}
	case ActionList:
	case ActionClear:
		sel.Clear()
		if err := s.sessions.DeleteSnapshot(ctx, sessionID); err != nil {
			return fail(result, err)
		}
	default:
		return fail(result, fmt.Errorf("unknown action %q", event.Action))
	}

	if mutated {
		if err := s.sessions.PutSnapshot(ctx, sessionID, sel.Snapshot()); err != nil {
			logger.Error().Err(err).Msg("Failed to save session")
			return fail(result, err)
		}
	}

	result.Selected = make([]SelectedItem, 0, sel.Count())
	for _, it := range sel.Items() {
		result.Selected = append(result.Selected, SelectedItem{
			Key:      it.ID,
			MimeType: string(it.MimeType),
			Checked:  sel.CheckedNumOf(it),
		})
	}
	result.CollectionType = sel.CollectionType().String()
	result.MaxSelectable = sel.CurrentMaxSelectable()

	elapsed := time.Since(handlerStart)
	s.newRecorder().
		Dimension("Action", event.Action).
		Selection(sel).
		Metric(metrics.ActionLatency, float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Property("sessionId", sessionID).
		Flush()

	logger.Info().
		Int("selected", sel.Count()).
		Str("collectionType", result.CollectionType).
		Bool("saved", mutated).
		Dur("duration", elapsed).
		Msg("Selection action complete")
	return result, nil
}

// add checks and then selects one item.
func (s *service) add(ctx context.Context, sel *selection.Store, resolver *filehandler.S3Resolver, it EventItem) ItemResult {
	r := s.check(ctx, sel, resolver, it)
	if !r.Accepted {
		return r
	}
	item, _ := s.item(sel, resolver, it)
	added, err := sel.Add(item)
	if errors.Is(err, selection.ErrUnsupportedKind) {
		return rejected(it.Key, selection.NewCause(selection.CauseUnsupportedFile, messages(sel).UnsupportedFile()))
	}
	if err != nil {
		return rejected(it.Key, selection.NewCause(selection.CauseTypeConflict, messages(sel).TypeConflict()))
	}
	r.Accepted = added
	r.Checked = sel.CheckedNumOf(item)
	return r
}

// check runs the acceptability rules without changing the selection.
func (s *service) check(ctx context.Context, sel *selection.Store, resolver *filehandler.S3Resolver, it EventItem) ItemResult {
	item, cause := s.item(sel, resolver, it)
	if cause == nil {
		cause = sel.IsAcceptable(ctx, item)
	}
	if cause != nil {
		return rejected(it.Key, cause)
	}
	return ItemResult{Key: it.Key, Accepted: true}
}

// item converts an event item. The key is normalised so s3://bucket/key and
// a bare key in the default bucket are the same item. An unknown or missing
// mime type is reported as an unsupported file.
func (s *service) item(sel *selection.Store, resolver *filehandler.S3Resolver, it EventItem) (media.Item, *selection.Cause) {
	mt, err := media.Parse(it.MimeType)
	if it.MimeType == "" {
		var parsed media.Item
		parsed, err = media.ItemFromPath(it.Key, it.Size)
		mt = parsed.MimeType
	}
	if err != nil {
		log.Debug().Err(err).Str("key", it.Key).Msg("Unrecognised media type")
		return media.Item{}, selection.NewCause(selection.CauseUnsupportedFile, messages(sel).UnsupportedFile())
	}
	return media.NewItem(resolver.ObjectID(it.Key), mt, it.Size, time.Duration(it.DurationMs)*time.Millisecond), nil
}

func (s *service) recordVerdict(action string, r ItemResult) {
	var cause *selection.Cause
	if r.Cause != nil {
		cause = selection.NewCause(selection.CauseKind(r.Cause.Kind), r.Cause.Message)
	}
	s.newRecorder().Dimension("Action", action).Verdict(cause).Flush()
}

func rejected(key string, cause *selection.Cause) ItemResult {
	return ItemResult{
		Key: key,
		Cause: &CauseView{
			Kind:    string(cause.Kind),
			Form:    cause.Form.String(),
			Title:   cause.Title,
			Message: cause.Message,
		},
	}
}

func messages(sel *selection.Store) *selection.Messages {
	if m := sel.Policy().Messages; m != nil {
		return m
	}
	return selection.DefaultMessages()
}

func fail(result ActionResult, err error) (ActionResult, error) {
	result.Error = err.Error()
	return result, err
}
