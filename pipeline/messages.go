package pipeline

// Fixed English texts for refusal and fallback outcomes. Localization
// into the working language happens at response assembly.
const (
	msgTranslationFailure = "I'm unable to process your question due to language handling issues. " +
		"Please try again in simple English or consult a legal expert."

	msgRetrievalFailure = "I couldn't find relevant legal sections in the current dataset for your question. " +
		"Please consult a qualified legal expert or legal aid service."

	msgLLMUnavailable = "I found relevant legal sections, but I'm currently unable to generate the full explanation. " +
		"Please review the below sections and consult a lawyer."

	msgHighRisk = "Your question may involve serious harm, instructions to commit an illegal act, or suicide-related content. " +
		"For safety reasons, I cannot provide guidance.\n\n" +
		"If you or someone else is in immediate danger, please:" +
		"\n• Call emergency services (Dial 100 in India)" +
		"\n• Contact local authorities" +
		"\n\nIf your question is about legal consequences of an incident that already occurred (not future intent), please rephrase clearly."

	msgValidationRefusal = "I'm unable to provide a fully reliable legal interpretation based on the available information. " +
		"Please consult a qualified legal expert."

	msgOffTopic = "I can only help with questions about Indian law, your rights, and legal procedures. " +
		"Please ask a question related to the law."

	msgIllegal = "I can't help with committing an illegal act or avoiding legal consequences. " +
		"If you want to understand the law, your rights, or what consequences apply, I'm happy to explain."

	msgGeneralFallback = "Hello! I'm LawGuide AI. Ask me anything about Indian law and I'll explain the relevant " +
		"acts and sections in simple language."

	msgSummaryTooShort = "The selected legal text is too short to generate a meaningful explanation."

	msgSummaryUnavailable = "A clear explanation is currently unavailable. " +
		"Please consult a legal expert."

	mediumConfidenceDisclaimer = "\n\n⚠ NOTE: This explanation is based only on available legal sections and may " +
		"not reflect recent updates or state variations. Consult a licensed lawyer before making decisions."
)
