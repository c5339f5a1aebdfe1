package v1

import "artkit-backend/pkg/logger"

// DetailNavigator satisfies domain.Navigator for the HTTP delivery.
// The mobile client performs the actual navigation from the detail ref
// in the Open response; the backend just records the intent.
type DetailNavigator struct{}

func (DetailNavigator) NavigateToDetail(id string) {
	logger.Debug().Str("art_tool_id", id).Msg("Navigate to detail")
}
