package compose

import "crmmail/models"

// BuiltinTemplates returns the canned responses offered by the compose
// panel's template dropdown.
func BuiltinTemplates() []models.EmailTemplate {
	return []models.EmailTemplate{
		{
			Name:    "Quick Response",
			Subject: "Re: Your Inquiry",
			Body:    "<p>Thank you for reaching out!</p><p>I appreciate your interest and will get back to you shortly with more information.</p><p>Best regards</p>",
		},
		{
			Name:    "Property Inquiry",
			Subject: "Property Information",
			Body:    "<p>Hi there,</p><p>Thank you for your interest in the property. I'd be happy to provide you with more details and schedule a showing.</p><p>Please let me know your availability and I'll arrange a convenient time.</p><p>Best regards</p>",
		},
		{
			Name:    "Follow Up",
			Subject: "Following Up",
			Body:    "<p>Hi,</p><p>I wanted to follow up on our recent conversation. Do you have any questions or need additional information?</p><p>I'm here to help!</p><p>Best regards</p>",
		},
		{
			Name:    "Thank You",
			Subject: "Thank You",
			Body:    "<p>Hi,</p><p>Thank you for your time today. It was great speaking with you!</p><p>Please don't hesitate to reach out if you have any questions.</p><p>Best regards</p>",
		},
		{
			Name:    "Signature",
			Subject: "",
			Body:    `<br><br><hr style="border: 1px solid #e5e7eb;"><div><p style="margin: 0;"><strong>Real Estate Professional</strong></p></div>`,
		},
	}
}

// FindTemplate looks a template up by name.
func FindTemplate(name string) (models.EmailTemplate, bool) {
	for _, tpl := range BuiltinTemplates() {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return models.EmailTemplate{}, false
}
