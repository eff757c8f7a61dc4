package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hupe1980/reactmesh/tool"
	"github.com/tidwall/gjson"
)

// WeatherToolName is the registry name of the weather tool.
const WeatherToolName = "get_weather"

// WeatherOptions configures the weather tool.
type WeatherOptions struct {
	// BaseURL of the wttr.in service.
	BaseURL    string
	HTTPClient *http.Client
}

type weatherArgs struct {
	City string `arg:"city,required"`
}

// NewWeatherTool returns a tool reporting the current weather for a city
// using the wttr.in JSON format.
func NewWeatherTool(optFns ...func(o *WeatherOptions)) *tool.FunctionTool {
	opts := WeatherOptions{BaseURL: "https://wttr.in"}
	for _, fn := range optFns {
		fn(&opts)
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	client := httpClient(opts.HTTPClient)

	return tool.NewStructTool(WeatherToolName,
		`Get the current weather for a city. Usage: get_weather[city="Beijing"]`,
		func(ctx context.Context, in weatherArgs) (string, error) {
			req, err := http.NewRequest(http.MethodGet, base+"/"+url.PathEscape(in.City)+"?format=j1", nil)
			if err != nil {
				return "", err
			}

			body, _, err := do(ctx, client, req)
			if err != nil {
				return "", fmt.Errorf("weather lookup for %q: %w", in.City, err)
			}

			return formatWeather(in.City, body)
		})
}

func formatWeather(city string, body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("weather lookup for %q: invalid JSON response", city)
	}

	current := gjson.GetBytes(body, "current_condition.0")
	if !current.Exists() {
		return "", fmt.Errorf("weather lookup for %q: no current conditions", city)
	}

	desc := strings.TrimSpace(current.Get("weatherDesc.0.value").String())
	if desc == "" {
		desc = "unknown conditions"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current weather in %s: %s, %s°C", city, desc, current.Get("temp_C").String())
	if feels := current.Get("FeelsLikeC"); feels.Exists() {
		fmt.Fprintf(&b, " (feels like %s°C)", feels.String())
	}
	if humidity := current.Get("humidity"); humidity.Exists() {
		fmt.Fprintf(&b, ", humidity %s%%", humidity.String())
	}
	if wind := current.Get("windspeedKmph"); wind.Exists() {
		fmt.Fprintf(&b, ", wind %s km/h", wind.String())
	}

	return b.String(), nil
}
