package figurine

// FigurinePrompt is the fixed image-to-image instruction sent with every
// pattern-triggered request.
const FigurinePrompt = "Please accurately transform the main subject in this photo into a realistic, masterpiece-like 1/7 scale PVC statue. " +
	"A box should be placed behind the side of the statue: the front of the box has a large, clear transparent front window printed with the main artwork, product name, brand logo, barcode, and a small specification or authenticity verification panel. " +
	"A small price tag sticker must also be attached to the corner of the box. " +
	"Meanwhile, a computer monitor is placed at the back, and the monitor screen needs to display the ZBrush modeling process of this statue. " +
	"In front of the packaging box, this statue should be placed on a round plastic base. " +
	"The statue must have 3D dimensionality and a sense of realism, and the texture of the PVC material needs to be clearly represented. " +
	"The statue should occupy a moderate portion of the scene, not too large, so that the surrounding packaging, tabletop, and background elements are clearly visible and well balanced in the composition. " +
	"The tabletop and surrounding scene should have additional details, such as scattered drawing tools, reference sheets, notebooks, small stationery, coffee cups, or small decorative items, to make the environment richer but not cluttered. " +
	"Ensure that these extra elements do not obscure the statue and maintain proper perspective. " +
	"If the background can be set as an indoor scene, the effect will be even better. " +
	"Below are detailed guidelines to note: " +
	"When repairing any missing parts, there must be no poorly executed elements. " +
	"When repairing human figures (if applicable), the body parts must be natural, movements must be coordinated, and the proportions of all parts must be reasonable. " +
	"If the original photo is not a full-body shot, try to supplement the statue to make it a full-body version. " +
	"The human figure's expression and movements must be exactly consistent with those in the photo. " +
	"The figure's head should not appear too large, its legs should not appear too short, and the figure should not look stunted—this guideline may be ignored if the statue is a chibi-style design. " +
	"For animal statues, the realism and level of detail of the fur should be reduced to make it more like a statue rather than the real original creature. " +
	"No outer outline lines should be present, and the statue must not be flat. " +
	"Please pay attention to the perspective relationship of near objects appearing larger and far objects smaller."
