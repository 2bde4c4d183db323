package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed tree hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing tree hashes.
const HashVersion byte = 1

// Node kind tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagAbsent byte = 0x00 // missing optional child

	// Literal values
	TagNumberLiteral     byte = 0x01
	TagStringLiteral     byte = 0x02
	TagHexLiteral        byte = 0x03
	TagBytesLiteral      byte = 0x04
	TagScientificLiteral byte = 0x05
	TagTrueLiteral       byte = 0x06
	TagFalseLiteral      byte = 0x07
	TagNullLiteral       byte = 0x08
	TagThis              byte = 0x09
	TagIdentifier        byte = 0x0A

	// Expressions
	TagTernary            byte = 0x10
	TagBinaryOperation    byte = 0x11
	TagUnaryOperation     byte = 0x12
	TagFunctionCall       byte = 0x13
	TagMethodCall         byte = 0x14
	TagFieldAccess        byte = 0x15
	TagArrayElement       byte = 0x16
	TagArrayAccess        byte = 0x17
	TagDictionary         byte = 0x18
	TagDictionaryAccess   byte = 0x19
	TagClassInstantiation byte = 0x1A
	TagByteArray          byte = 0x1B

	// Statements
	TagDeclaration         byte = 0x20
	TagSetStatement        byte = 0x21
	TagAssignStatement     byte = 0x22
	TagIfStatement         byte = 0x23
	TagInputStatement      byte = 0x24
	TagForStatement        byte = 0x25
	TagForeachStatement    byte = 0x26
	TagGenerateStatement   byte = 0x27
	TagShowStatement       byte = 0x28
	TagShowLnStatement     byte = 0x29
	TagRepeatStatement     byte = 0x2A
	TagRepeatTimeStatement byte = 0x2B
	TagIterateStatement    byte = 0x2C
	TagChooseStatement     byte = 0x2D
	TagReturnStatement     byte = 0x2E
	TagImportStatement     byte = 0x2F
	TagFromImport          byte = 0x30
	TagRaiseException      byte = 0x31
	TagTryCapture          byte = 0x32
	TagSkipStatement       byte = 0x33
	TagExitStatement       byte = 0x34
	TagAwaitStatement      byte = 0x35
	TagEOF                 byte = 0x36

	// Declarations and classes
	TagFunctionDecl          byte = 0x40
	TagClassDecl             byte = 0x41
	TagFieldDecl             byte = 0x42
	TagMethodDecl            byte = 0x43
	TagConstructorDecl       byte = 0x44
	TagParentMethodAccess    byte = 0x45
	TagParentAccess          byte = 0x46
	TagParentConstructorCall byte = 0x47
	TagCallback              byte = 0x48

	// Structure
	TagBlock byte = 0x50

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagAbsent,
	TagNumberLiteral, TagStringLiteral, TagHexLiteral, TagBytesLiteral,
	TagScientificLiteral, TagTrueLiteral, TagFalseLiteral, TagNullLiteral,
	TagThis, TagIdentifier,
	TagTernary, TagBinaryOperation, TagUnaryOperation, TagFunctionCall,
	TagMethodCall, TagFieldAccess, TagArrayElement, TagArrayAccess,
	TagDictionary, TagDictionaryAccess, TagClassInstantiation, TagByteArray,
	TagDeclaration, TagSetStatement, TagAssignStatement, TagIfStatement,
	TagInputStatement, TagForStatement, TagForeachStatement, TagGenerateStatement,
	TagShowStatement, TagShowLnStatement, TagRepeatStatement, TagRepeatTimeStatement,
	TagIterateStatement, TagChooseStatement, TagReturnStatement, TagImportStatement,
	TagFromImport, TagRaiseException, TagTryCapture, TagSkipStatement,
	TagExitStatement, TagAwaitStatement, TagEOF,
	TagFunctionDecl, TagClassDecl, TagFieldDecl, TagMethodDecl,
	TagConstructorDecl, TagParentMethodAccess, TagParentAccess,
	TagParentConstructorCall, TagCallback,
	TagBlock,
}
