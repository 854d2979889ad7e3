package mapper

import (
	"fmt"

	klspplugin "github.com/kedro-org/kedro-lsp/src/klsp/entity/klsp-plugin"
)

// PluginInfoToRuntimePrioritizedMethods maps all PluginInfo from running plugins, into a prioritized list of modules to run per method.
func PluginInfoToRuntimePrioritizedMethods(allPluginInfo []klspplugin.PluginInfo) (klspplugin.RuntimePrioritizedMethods, error) {
	buckets := make(map[string]map[klspplugin.Priority][]*klspplugin.Methods)

	for _, pluginInfo := range allPluginInfo {
		if err := pluginInfo.Validate(); err != nil {
			return nil, fmt.Errorf("error validating plugin configuration: %w", err)
		}

		for method, priority := range pluginInfo.Priorities {
			if _, ok := buckets[method]; !ok {
				buckets[method] = make(map[klspplugin.Priority][]*klspplugin.Methods)
			}
			buckets[method][priority] = append(buckets[method][priority], pluginInfo.Methods)
		}
	}

	// Sync holds high then regular priority; async runs after the response.
	result := make(klspplugin.RuntimePrioritizedMethods, len(buckets))
	for method, byPriority := range buckets {
		var lists klspplugin.MethodLists
		lists.Sync = append(lists.Sync, byPriority[klspplugin.PriorityHigh]...)
		lists.Sync = append(lists.Sync, byPriority[klspplugin.PriorityRegular]...)
		lists.Async = append(lists.Async, byPriority[klspplugin.PriorityAsync]...)
		result[method] = lists
	}

	return result, nil
}
