package errors

import "errors"

var (
	// ErrChannelResolution is returned when the news channel name cannot be resolved to an id
	ErrChannelResolution = errors.New("channel resolution failed")
	// ErrPostFetch is returned when the channel post listing cannot be retrieved
	ErrPostFetch = errors.New("post fetch failed")
	// ErrMetadataFetch marks channel or identity lookups that were replaced by fallbacks
	ErrMetadataFetch = errors.New("metadata fetch failed")
	// ErrFeedGeneration wraps any failure while assembling the RSS document
	ErrFeedGeneration = errors.New("feed generation failed")
	// ErrUpstream is returned by the Mattermost transport for any failed API call
	ErrUpstream = errors.New("mattermost api request failed")
)
