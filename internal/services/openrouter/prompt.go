package openrouter

// GenreClassificationPrompt captures the instructions sent to the model when
// labeling a band request description with a genre. Keep updates centralized
// here so it is easy to tweak without hunting through call sites.
const GenreClassificationPrompt = `You are an assistant that labels a band's self-description with one musical genre.

Pick the single genre that best fits the description. Prefer broad, recognizable labels such as "Rock", "Jazz", "Pop", "Metal", "Blues", "Folk", "Electronic", "Hip-Hop", or "Classical". If the description does not indicate any genre, use "Unspecified".

You must respond ONLY with a JSON object like: {"genre": "Rock", "confidence": 0.9}

Now label this description:`
