package calendar

// SeedEvents returns the sample events a fresh calendar starts with.
func SeedEvents() map[int][]Event {
	return map[int][]Event{
		5: {
			{
				ID:        "1",
				Title:     "Product Demo - Acme Corp",
				Type:      EventDemo,
				Time:      "10:00 AM",
				Date:      "5",
				Duration:  "1 hour",
				Attendees: []string{"Sarah Johnson", "Mike Smith"},
				Location:  "Zoom Meeting",
				Color:     typeColors[EventDemo],
			},
			{
				ID:        "2",
				Title:     "Follow-up Call",
				Type:      EventCall,
				Time:      "2:30 PM",
				Date:      "5",
				Duration:  "30 min",
				Attendees: []string{"Emily Rodriguez"},
				Location:  "Phone",
				Color:     typeColors[EventCall],
			},
		},
		12: {
			{
				ID:        "3",
				Title:     "Q4 Strategy Meeting",
				Type:      EventMeeting,
				Time:      "9:00 AM",
				Date:      "12",
				Duration:  "2 hours",
				Attendees: []string{"Team"},
				Location:  "Conference Room A",
				Color:     typeColors[EventMeeting],
			},
		},
		18: {
			{
				ID:        "4",
				Title:     "Enterprise Demo",
				Type:      EventDemo,
				Time:      "11:00 AM",
				Date:      "18",
				Duration:  "1 hour",
				Attendees: []string{"David Park", "Lisa Chen"},
				Location:  "Google Meet",
				Color:     typeColors[EventDemo],
			},
			{
				ID:        "5",
				Title:     "Discovery Call",
				Type:      EventCall,
				Time:      "3:00 PM",
				Date:      "18",
				Duration:  "45 min",
				Attendees: []string{"John Doe"},
				Location:  "Zoom",
				Color:     typeColors[EventCall],
			},
		},
	}
}
